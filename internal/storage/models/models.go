package models

// Evaluation is one dated, valued measurement of one entity. Instances are
// treated as immutable: any value change (including simulated ones) produces
// a new Evaluation.
type Evaluation struct {
	ID              string
	Datasource      string
	Date            string
	Value           float64
	Rationale       string
	MismatchDays    int
	MissingElements []string
}

// EstimationItem is one probabilistic estimation entry of a strategic
// indicator evaluation.
type EstimationItem struct {
	ID             int
	Label          string
	Value          float64
	UpperThreshold *float64
}

// Estimation is the full estimation record of one evaluation slot.
type Estimation []EstimationItem

// MetricBundle is a metric's identity plus its relevant evaluations for one
// query, together with the factors the metric feeds.
type MetricBundle struct {
	ID          string
	Name        string
	Description string
	Project     string
	Factors     []string
	Evaluations []Evaluation
}

// FactorBundle is a factor's identity plus its relevant evaluations,
// together with the strategic indicators the factor feeds.
type FactorBundle struct {
	ID          string
	Name        string
	Description string
	Project     string
	Indicators  []string
	Evaluations []Evaluation
}

// StrategicIndicatorBundle is a strategic indicator's identity plus its
// relevant evaluations. Estimations holds one entry per evaluation slot; an
// entry is nil when the stored record carried no estimation.
type StrategicIndicatorBundle struct {
	ID          string
	Name        string
	Description string
	Project     string
	Evaluations []Evaluation
	Estimations []Estimation
}

// RelationEdge is a stored directed weighted influence link
// (metric -> factor or factor -> strategic indicator) for one date.
type RelationEdge struct {
	Project     string
	Date        string
	Relation    string
	SourceID    string
	SourceType  string
	TargetID    string
	TargetType  string
	Value       float64
	Weight      float64
	TargetValue string
	SourceLabel string
}

// RelationSource and RelationTarget are the endpoint views of a deduplicated
// relation, with bare entity identifiers instead of composite ones.
type RelationSource struct {
	ID       string
	Value    string
	Category string
	Type     string
}

type RelationTarget struct {
	ID    string
	Value string
	Type  string
}

// Relation is the deduplicated, most-recent edge for one (source, target)
// pair within a query window.
type Relation struct {
	Weight string
	Source RelationSource
	Target RelationTarget
}

// FactorMetrics pairs a factor with the evaluations of the metrics feeding it.
type FactorMetrics struct {
	Factor  FactorBundle
	Metrics []MetricBundle
}

// StrategicIndicatorFactors pairs a strategic indicator with the evaluations
// of the factors feeding it.
type StrategicIndicatorFactors struct {
	Indicator StrategicIndicatorBundle
	Factors   []FactorBundle
}
