package application

import (
	"context"
	"errors"
	"fmt"

	masterdata "plant-monitor/internal/masterdata/domain"
)

// AssetSpec describes an asset to provision.
type AssetSpec struct {
	Name      string `yaml:"name"`
	AssetType string `yaml:"asset_type"`
	Status    string `yaml:"status"`
}

// FacilitySpec describes a facility and its assets to provision.
type FacilitySpec struct {
	Name         string      `yaml:"name"`
	Location     string      `yaml:"location"`
	FacilityType string      `yaml:"facility_type"`
	Description  string      `yaml:"description"`
	Assets       []AssetSpec `yaml:"assets"`
}

// Provisioner creates facilities and assets from a catalog.
type Provisioner struct {
	facilities masterdata.FacilityRepository
	assets     masterdata.AssetRepository
}

// NewProvisioner constructs a Provisioner.
func NewProvisioner(facilities masterdata.FacilityRepository, assets masterdata.AssetRepository) (*Provisioner, error) {
	if facilities == nil {
		return nil, errors.New("provisioner: nil facility repository")
	}
	if assets == nil {
		return nil, errors.New("provisioner: nil asset repository")
	}
	return &Provisioner{facilities: facilities, assets: assets}, nil
}

// Provision creates every facility of the catalog with its assets and returns the
// created assets in catalog order.
func (p *Provisioner) Provision(ctx context.Context, catalog []FacilitySpec) ([]masterdata.Asset, error) {
	var created []masterdata.Asset
	for _, spec := range catalog {
		facility := masterdata.Facility{
			Name:         spec.Name,
			Location:     spec.Location,
			FacilityType: spec.FacilityType,
			Description:  spec.Description,
		}
		if err := p.facilities.Create(ctx, &facility); err != nil {
			return nil, fmt.Errorf("provision facility %q: %w", spec.Name, err)
		}
		for _, assetSpec := range spec.Assets {
			status := masterdata.AssetStatus(assetSpec.Status)
			if status == "" {
				status = masterdata.StatusOperational
			}
			asset := masterdata.Asset{
				FacilityID: facility.ID,
				Name:       assetSpec.Name,
				AssetType:  assetSpec.AssetType,
				Status:     status,
			}
			if err := p.assets.Create(ctx, &asset); err != nil {
				return nil, fmt.Errorf("provision asset %q: %w", assetSpec.Name, err)
			}
			created = append(created, asset)
		}
	}
	return created, nil
}

// DefaultCatalog returns the demo plants: a combined-cycle power station and an
// ethylene chemical plant.
func DefaultCatalog() []FacilitySpec {
	return []FacilitySpec{
		{
			Name:         "Riverside Power Station",
			Location:     "Houston, TX",
			FacilityType: "Power Station",
			Description:  "Combined-cycle natural gas power station, 800 MW capacity",
			Assets: []AssetSpec{
				{Name: "Gas Turbine A", AssetType: "Turbine", Status: "operational"},
				{Name: "Gas Turbine B", AssetType: "Turbine", Status: "operational"},
				{Name: "Steam Turbine", AssetType: "Turbine", Status: "operational"},
				{Name: "Heat Recovery Boiler", AssetType: "Boiler", Status: "operational"},
				{Name: "Cooling Tower 1", AssetType: "Cooling System", Status: "operational"},
				{Name: "Cooling Tower 2", AssetType: "Cooling System", Status: "warning"},
				{Name: "Main Transformer", AssetType: "Electrical", Status: "operational"},
				{Name: "Feedwater Pump", AssetType: "Pump", Status: "operational"},
			},
		},
		{
			Name:         "Northshore Chemical Plant",
			Location:     "Baton Rouge, LA",
			FacilityType: "Chemical Plant",
			Description:  "Ethylene production facility, 500k tons/year capacity",
			Assets: []AssetSpec{
				{Name: "Cracking Furnace 1", AssetType: "Furnace", Status: "operational"},
				{Name: "Cracking Furnace 2", AssetType: "Furnace", Status: "operational"},
				{Name: "Distillation Column A", AssetType: "Column", Status: "operational"},
				{Name: "Compressor Unit", AssetType: "Compressor", Status: "warning"},
				{Name: "Reactor Vessel", AssetType: "Reactor", Status: "operational"},
				{Name: "Heat Exchanger Bank", AssetType: "Heat Exchanger", Status: "operational"},
			},
		},
	}
}
