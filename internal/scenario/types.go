// Package scenario decodes the external request/response schemas and maps
// a simulation request into an immutable SimConfig the engine can run,
// performing unit conversion and route-table assembly up front so the
// simulate package never has to reason about request shape.
package scenario

// FitRequest is the Distribution Fitting Service's external input.
type FitRequest struct {
	Data []FitStationBlock `json:"Data"`
}

type FitStationBlock struct {
	Station   string     `json:"Station"`
	TimeRange string     `json:"Time_Range"`
	Records   []FitPoint `json:"Records"`
}

type FitPoint struct {
	RecordID     int     `json:"Record_ID"`
	NumericValue float64 `json:"Numeric_Value"`
}

// FitResponse is the Distribution Fitting Service's external output.
type FitResponse struct {
	DataFitResponse []FitResultRow `json:"DataFitResponse"`
}

type FitResultRow struct {
	Station      string `json:"Station"`
	TimeRange    string `json:"Time_Range"`
	Distribution string `json:"Distribution"`
	ArgumentList string `json:"ArgumentList"`
}

// SimulationRequest is the simulator's external input.
type SimulationRequest struct {
	TimePeriod        string            `json:"time_period"`
	TimeSlot          int               `json:"time_slot"`
	ConfigurationData ConfigurationData `json:"configuration_data"`
	ScenarioData      []ScenarioRoute   `json:"scenario_data"`
}

type ConfigurationData struct {
	StationList      []StationDef  `json:"station_list"`
	RoutePair        []RoutePair   `json:"route_pair"`
	AlightingData    []DemandBlock `json:"alighting_data"`
	InterarrivalData []DemandBlock `json:"interarrival_data"`
}

type StationDef struct {
	StationID   int    `json:"station_id"`
	StationName string `json:"station_name"`
}

type RoutePair struct {
	RoutePairID int     `json:"route_pair_id"`
	FstStation  string  `json:"fst_station"`
	SndStation  string  `json:"snd_station"`
	TravelTime  float64 `json:"travel_time"` // minutes
	Distance    float64 `json:"distance"`    // meters
}

type DemandBlock struct {
	TimeRange string         `json:"time_range"`
	Records   []DemandRecord `json:"records"`
}

type DemandRecord struct {
	Station      string `json:"station"`
	Distribution string `json:"Distribution"`
	ArgumentList string `json:"ArgumentList"`
}

type ScenarioRoute struct {
	RouteID        int           `json:"route_id"`
	RouteName      string        `json:"route_name"`
	RouteOrder     string        `json:"route_order"`
	RouteSchedule  []Departure   `json:"route_schedule"`
	BusInformation BusInformation `json:"bus_information"`
}

type Departure struct {
	DepartureTime string `json:"departure_time"`
}

type BusInformation struct {
	BusSpeed      float64 `json:"bus_speed"`      // km/h
	MaxDistance   float64 `json:"max_distance"`   // km
	MaxBus        int     `json:"max_bus"`
	BusCapacity   int     `json:"bus_capacity"`
	AvgTravelTime float64 `json:"avg_travel_time"` // minutes
}

// SimulationResult is the simulator's external output.
type SimulationResult struct {
	ResultSummary ResultSummary `json:"result_summary"`
	SlotResults   []SlotResult  `json:"slot_results"`
	Logs          []LogEntry    `json:"logs"`
}

type ResultSummary struct {
	AverageWaitingTime    float64 `json:"average_waiting_time"`
	AverageQueueLength    float64 `json:"average_queue_length"`
	AverageUtilization    float64 `json:"average_utilization"`
	AverageTravelTime     float64 `json:"average_travel_time"`
	AverageTravelDistance float64 `json:"average_travel_distance"`
}

type SlotResult struct {
	SlotName           string       `json:"slot_name"`
	ResultTotalStation TotalStation `json:"result_total_station"`
	ResultStation      []StationRow `json:"result_station"`
	ResultRoute        []RouteRow   `json:"result_route"`
}

type TotalStation struct {
	Waiting float64 `json:"waiting"`
	Queue   float64 `json:"queue"`
}

type StationRow struct {
	Station string  `json:"station"`
	Waiting float64 `json:"waiting"`
	Queue   float64 `json:"queue"`
}

type RouteRow struct {
	RouteID        int     `json:"route_id"`
	Waiting        float64 `json:"waiting"`
	Utilization    float64 `json:"utilization"`
	TravelTime     float64 `json:"travel_time"`
	TravelDistance float64 `json:"travel_distance"`
	Queue          float64 `json:"queue"`
	CustomersCount int     `json:"customers_count"`
}

type LogEntry struct {
	Time      string `json:"time"`
	Component string `json:"component"`
	Message   string `json:"message"`
}
