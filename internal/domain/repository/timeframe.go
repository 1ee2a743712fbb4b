package repository

import "SMCTrader/internal/domain/models"

// IsValidTimeframe returns true if tf is a supported timeframe.
func IsValidTimeframe(tf models.Timeframe) bool {
	return tf.Duration() > 0
}

// DefaultTimeframe returns the default execution timeframe.
func DefaultTimeframe() models.Timeframe { return models.TF5m }

// DefaultHTFTimeframe returns the default higher timeframe.
func DefaultHTFTimeframe() models.Timeframe { return models.TF1h }

// NormalizeTimeframe converts raw string to a valid timeframe (or fallback).
func NormalizeTimeframe(s string, fallback models.Timeframe) models.Timeframe {
	if s == "" {
		return fallback
	}
	tf := models.Timeframe(s)
	if IsValidTimeframe(tf) {
		return tf
	}
	return fallback
}
