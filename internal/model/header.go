package model

// Header is the title block of the design the BOM was generated from.
type Header struct {
	Title    string `json:"title"`
	Date     string `json:"date"`
	Company  string `json:"company,omitempty"`
	Revision string `json:"revision"`
	Source   string `json:"source"`
}

// WarningKind classifies a per-component problem found during consolidation.
type WarningKind string

const (
	WarnMalformedValue   WarningKind = "malformed_value"
	WarnUnclassifiable   WarningKind = "unclassifiable_reference"
	WarnMissingFootprint WarningKind = "missing_footprint"
	WarnMalformedComp    WarningKind = "malformed_component"
)

// Warning reports a problem isolated to a single component. Warnings never
// stop the rest of the batch from being processed.
type Warning struct {
	Reference string      `json:"reference"`
	Kind      WarningKind `json:"kind"`
	Err       error       `json:"-"`
}

func (w Warning) Error() string {
	if w.Err == nil {
		return string(w.Kind) + ": " + w.Reference
	}
	return string(w.Kind) + ": " + w.Reference + ": " + w.Err.Error()
}
