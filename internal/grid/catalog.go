package grid

// BuildingSpec describes one placeable building: purchase cost and its
// per-tick contribution to the city while present on an owned tile.
type BuildingSpec struct {
	Name      string `json:"name"`
	Cost      int    `json:"cost"`
	PopGen    int    `json:"pop_gen"`    // Population added per economic tick
	IncomeGen int    `json:"income_gen"` // Money added per economic tick
}

// DemolitionCost is the flat price of bulldozing any building.
const DemolitionCost = 5

// ResidentialCapacity is the population housed per residential building.
const ResidentialCapacity = 50

var catalog = map[BuildingType]BuildingSpec{
	BuildingRoad:        {Name: "Road", Cost: 10},
	BuildingResidential: {Name: "Residential", Cost: 100, PopGen: 5},
	BuildingCommercial:  {Name: "Commercial", Cost: 300, IncomeGen: 15},
	BuildingIndustrial:  {Name: "Industrial", Cost: 500, IncomeGen: 40},
	BuildingPark:        {Name: "Park", Cost: 50, PopGen: 1},
	BuildingRail:        {Name: "Rail", Cost: 25},
	BuildingStation:     {Name: "Train Station", Cost: 400, IncomeGen: 10},
	BuildingBridge:      {Name: "Bridge", Cost: 150},
}

// SpecFor returns the catalog entry for a building type. The second
// return is false for BuildingNone and any type missing from the table.
func SpecFor(b BuildingType) (BuildingSpec, bool) {
	spec, ok := catalog[b]
	return spec, ok
}
