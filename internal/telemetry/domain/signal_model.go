package telemetry

import "sort"

// MetricDefinition describes how one metric of an asset category behaves.
type MetricDefinition struct {
	Name     string  `yaml:"name"`
	Unit     string  `yaml:"unit"`
	Baseline float64 `yaml:"baseline"`
	Noise    float64 `yaml:"noise"`
}

// SignalModel maps an asset category to the ordered metrics it reports.
type SignalModel struct {
	profiles map[string][]MetricDefinition
}

// NewSignalModel builds a model from category profiles. The input is copied.
func NewSignalModel(profiles map[string][]MetricDefinition) SignalModel {
	copied := make(map[string][]MetricDefinition, len(profiles))
	for category, metrics := range profiles {
		copied[category] = append([]MetricDefinition(nil), metrics...)
	}
	return SignalModel{profiles: copied}
}

// MetricsFor returns the metrics of a category. Unknown categories report nothing.
func (m SignalModel) MetricsFor(category string) []MetricDefinition {
	metrics := m.profiles[category]
	if len(metrics) == 0 {
		return []MetricDefinition{}
	}
	return append([]MetricDefinition(nil), metrics...)
}

// Categories lists the known categories in lexical order.
func (m SignalModel) Categories() []string {
	result := make([]string, 0, len(m.profiles))
	for category := range m.profiles {
		result = append(result, category)
	}
	sort.Strings(result)
	return result
}

// Merge returns a model where overrides replace whole categories of m.
func (m SignalModel) Merge(overrides map[string][]MetricDefinition) SignalModel {
	merged := make(map[string][]MetricDefinition, len(m.profiles)+len(overrides))
	for category, metrics := range m.profiles {
		merged[category] = metrics
	}
	for category, metrics := range overrides {
		merged[category] = metrics
	}
	return NewSignalModel(merged)
}

// DefaultSignalModel returns the built-in profiles for plant equipment.
func DefaultSignalModel() SignalModel {
	return NewSignalModel(map[string][]MetricDefinition{
		"Turbine": {
			{Name: "temperature", Unit: "°C", Baseline: 540, Noise: 15},
			{Name: "pressure", Unit: "bar", Baseline: 35, Noise: 2},
			{Name: "power_output", Unit: "MW", Baseline: 260, Noise: 20},
			{Name: "vibration", Unit: "mm/s", Baseline: 2.5, Noise: 0.8},
			{Name: "rpm", Unit: "RPM", Baseline: 3600, Noise: 30},
		},
		"Boiler": {
			{Name: "temperature", Unit: "°C", Baseline: 480, Noise: 20},
			{Name: "pressure", Unit: "bar", Baseline: 80, Noise: 5},
			{Name: "steam_flow", Unit: "tons/hr", Baseline: 320, Noise: 25},
			{Name: "efficiency", Unit: "%", Baseline: 92, Noise: 3},
		},
		"Cooling System": {
			{Name: "temperature", Unit: "°C", Baseline: 28, Noise: 4},
			{Name: "flow_rate", Unit: "m³/hr", Baseline: 4500, Noise: 300},
			{Name: "power_consumption", Unit: "MW", Baseline: 3.2, Noise: 0.5},
		},
		"Electrical": {
			{Name: "voltage", Unit: "kV", Baseline: 345, Noise: 5},
			{Name: "current", Unit: "A", Baseline: 1200, Noise: 80},
			{Name: "power_output", Unit: "MW", Baseline: 780, Noise: 30},
			{Name: "temperature", Unit: "°C", Baseline: 65, Noise: 8},
		},
		"Pump": {
			{Name: "pressure", Unit: "bar", Baseline: 45, Noise: 3},
			{Name: "flow_rate", Unit: "m³/hr", Baseline: 800, Noise: 60},
			{Name: "temperature", Unit: "°C", Baseline: 55, Noise: 5},
			{Name: "power_consumption", Unit: "MW", Baseline: 2.8, Noise: 0.3},
			{Name: "vibration", Unit: "mm/s", Baseline: 1.8, Noise: 0.5},
		},
		"Furnace": {
			{Name: "temperature", Unit: "°C", Baseline: 850, Noise: 30},
			{Name: "pressure", Unit: "bar", Baseline: 2.5, Noise: 0.3},
			{Name: "fuel_flow", Unit: "m³/hr", Baseline: 1200, Noise: 100},
			{Name: "power_consumption", Unit: "MW", Baseline: 15, Noise: 2},
			{Name: "efficiency", Unit: "%", Baseline: 88, Noise: 4},
		},
		"Column": {
			{Name: "temperature", Unit: "°C", Baseline: 120, Noise: 10},
			{Name: "pressure", Unit: "bar", Baseline: 12, Noise: 1},
			{Name: "flow_rate", Unit: "m³/hr", Baseline: 350, Noise: 30},
			{Name: "product_purity", Unit: "%", Baseline: 99.2, Noise: 0.5},
		},
		"Compressor": {
			{Name: "pressure", Unit: "bar", Baseline: 28, Noise: 3},
			{Name: "temperature", Unit: "°C", Baseline: 95, Noise: 8},
			{Name: "power_consumption", Unit: "MW", Baseline: 8.5, Noise: 1},
			{Name: "vibration", Unit: "mm/s", Baseline: 3.2, Noise: 1},
			{Name: "flow_rate", Unit: "m³/hr", Baseline: 2000, Noise: 150},
		},
		"Reactor": {
			{Name: "temperature", Unit: "°C", Baseline: 280, Noise: 15},
			{Name: "pressure", Unit: "bar", Baseline: 45, Noise: 3},
			{Name: "flow_rate", Unit: "m³/hr", Baseline: 500, Noise: 40},
			{Name: "conversion_rate", Unit: "%", Baseline: 94, Noise: 2},
		},
		"Heat Exchanger": {
			{Name: "temperature", Unit: "°C", Baseline: 180, Noise: 12},
			{Name: "pressure", Unit: "bar", Baseline: 15, Noise: 1.5},
			{Name: "flow_rate", Unit: "m³/hr", Baseline: 600, Noise: 50},
			{Name: "efficiency", Unit: "%", Baseline: 85, Noise: 5},
		},
	})
}
