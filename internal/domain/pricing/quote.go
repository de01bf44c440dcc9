// Package pricing computes suggested sale prices from materials, labour and markup.
package pricing

import (
	"errors"
	"fmt"
	"math"

	"catalog/internal/domain/artwork"
	"catalog/internal/domain/artworktype"
	"catalog/internal/domain/material"
)

// Domain errors
var (
	ErrUnknownMaterial = errors.New("artwork uses an unknown material")
	ErrNegativeHours   = errors.New("hours cannot be negative")
)

// RoundingStepCents is the unit the total is rounded up to.
const RoundingStepCents = 100

// Request holds everything needed to price one artwork.
type Request struct {
	Type      artworktype.ArtworkType
	Usages    []artwork.MaterialUsage
	Materials map[string]material.Material
	Hours     float64
}

// Line is the cost of one material in a breakdown.
type Line struct {
	MaterialID string  `json:"material_id"`
	Name       string  `json:"name"`
	Quantity   float64 `json:"quantity"`
	Unit       string  `json:"unit"`
	CostCents  int64   `json:"cost_cents"`
}

// Breakdown is an itemised price suggestion.
type Breakdown struct {
	Lines         []Line `json:"lines"`
	MaterialCents int64  `json:"material_cents"`
	LabourCents   int64  `json:"labour_cents"`
	SubtotalCents int64  `json:"subtotal_cents"`
	MarkupCents   int64  `json:"markup_cents"`
	TotalCents    int64  `json:"total_cents"`
}

// Quote prices req.
// PRE: every usage refers to a material in req.Materials
// POST: TotalCents is a multiple of RoundingStepCents and >= SubtotalCents + MarkupCents
func Quote(req Request) (Breakdown, error) {
	if req.Hours < 0 {
		return Breakdown{}, ErrNegativeHours
	}

	var b Breakdown
	for _, u := range req.Usages {
		m, ok := req.Materials[u.MaterialID]
		if !ok {
			return Breakdown{}, fmt.Errorf("%w: %s", ErrUnknownMaterial, u.MaterialID)
		}
		cost := roundCents(u.Quantity * float64(m.UnitCostCents))
		b.Lines = append(b.Lines, Line{
			MaterialID: m.ID,
			Name:       m.Name,
			Quantity:   u.Quantity,
			Unit:       m.Unit,
			CostCents:  cost,
		})
		b.MaterialCents += cost
	}

	b.LabourCents = roundCents(req.Hours * float64(req.Type.HourlyRateCents))
	b.SubtotalCents = b.MaterialCents + b.LabourCents
	b.MarkupCents = roundCents(float64(b.SubtotalCents) * float64(req.Type.MarkupPercent) / 100)
	b.TotalCents = roundUp(b.SubtotalCents+b.MarkupCents, RoundingStepCents)
	return b, nil
}

func roundCents(v float64) int64 {
	return int64(math.Round(v))
}

func roundUp(v, step int64) int64 {
	if r := v % step; r != 0 {
		return v + step - r
	}
	return v
}
