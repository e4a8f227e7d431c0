package domain

// Metric is the distance metric of a vector index.
type Metric string

// Supported distance metrics.
const (
	MetricCosine     Metric = "cosine"
	MetricEuclidean  Metric = "euclidean"
	MetricDotProduct Metric = "dotproduct"
)

// IsValid returns true if the metric is recognised.
func (m Metric) IsValid() bool {
	switch m {
	case MetricCosine, MetricEuclidean, MetricDotProduct:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (m Metric) String() string {
	return string(m)
}

// IndexSpec describes a vector index to provision.
// Dimension and Metric are fixed at creation and must match every vector inserted later.
type IndexSpec struct {
	Name      string
	Dimension int
	Metric    Metric

	// Cloud and Region place serverless indexes (e.g. "aws", "us-east-1").
	Cloud  string
	Region string
}

// RecordMetadata is the metadata stored alongside a vector.
type RecordMetadata struct {
	Text   string `json:"text"`
	Source string `json:"source"`
}

// VectorRecord is a single {id, vector, metadata} entry sent to a vector index.
type VectorRecord struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata RecordMetadata `json:"metadata"`
}
