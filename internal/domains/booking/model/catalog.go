package model

import (
	"github.com/shopspring/decimal"
)

type ServiceType string

const (
	ServiceStudioAccess    ServiceType = "studio-access"
	ServiceEngineerRequest ServiceType = "engineer-request"
	ServiceMixing          ServiceType = "mixing"
)

type PricingUnit string

const (
	PerHour PricingUnit = "hour"
	PerSong PricingUnit = "song"
)

// Service is an entry of the studio's public price list.
type Service struct {
	Type  ServiceType     `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Unit  PricingUnit     `json:"unit"`
}

var catalog = map[ServiceType]Service{
	ServiceStudioAccess: {
		Type:  ServiceStudioAccess,
		Title: "Studio Access",
		Price: decimal.NewFromInt(150),
		Unit:  PerHour,
	},
	ServiceEngineerRequest: {
		Type:  ServiceEngineerRequest,
		Title: "Engineer Request",
		Price: decimal.NewFromInt(200),
		Unit:  PerHour,
	},
	ServiceMixing: {
		Type:  ServiceMixing,
		Title: "Mixing",
		Price: decimal.NewFromInt(300),
		Unit:  PerSong,
	},
}

// Catalog returns the price list in display order.
func Catalog() []Service {
	return []Service{
		catalog[ServiceStudioAccess],
		catalog[ServiceEngineerRequest],
		catalog[ServiceMixing],
	}
}

func LookupService(t ServiceType) (Service, bool) {
	s, ok := catalog[t]
	return s, ok
}

func (t ServiceType) Valid() bool {
	_, ok := catalog[t]
	return ok
}

// Title falls back to the raw id for services missing from the catalog.
func (t ServiceType) Title() string {
	if s, ok := catalog[t]; ok {
		return s.Title
	}
	return string(t)
}

// EstimatePrice quotes hourly services pro rata and per-song services flat.
func (s Service) EstimatePrice(in Interval) decimal.Decimal {
	if s.Unit == PerSong {
		return s.Price
	}
	hours := decimal.NewFromInt(int64(in.Minutes())).Div(decimal.NewFromInt(60))
	return s.Price.Mul(hours).Round(2)
}
