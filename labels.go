package instrumentator

// Dimension is an Info attribute that can be used as a label.
type Dimension uint8

// Available dimensions. Labels are always built in this order.
const (
	Handler Dimension = 1 << iota
	Method
	Status
)

var dimensionOrder = [...]Dimension{Handler, Method, Status}

// LabelName returns the label name used for d.
func (d Dimension) LabelName() string {
	switch d {
	case Handler:
		return "handler"
	case Method:
		return "method"
	case Status:
		return "status"
	default:
		return ""
	}
}

// Value returns the attribute of info that d selects.
func (d Dimension) Value(info Info) string {
	switch d {
	case Handler:
		return info.ModifiedHandler
	case Method:
		return info.Method
	case Status:
		return info.ModifiedStatus
	default:
		return ""
	}
}

// Dimensions is a set of Dimension.
type Dimensions uint8

// AllDimensions includes handler, method and status.
const AllDimensions = Dimensions(Handler | Method | Status)

// NewDimensions returns the set of the given dimensions.
func NewDimensions(ds ...Dimension) Dimensions {
	var s Dimensions
	for _, d := range ds {
		s |= Dimensions(d)
	}
	return s
}

// Has reports whether d is in the set.
func (s Dimensions) Has(d Dimension) bool {
	return s&Dimensions(d) != 0
}

// BuildLabels returns the label names of the set and the dimensions they are
// read from. Both slices have the same length and names[i] is the label of
// fields[i]. An empty set yields two empty slices.
func BuildLabels(s Dimensions) (names []string, fields []Dimension) {
	names = []string{}
	fields = []Dimension{}
	for _, d := range dimensionOrder {
		if s.Has(d) {
			names = append(names, d.LabelName())
			fields = append(fields, d)
		}
	}
	return names, fields
}

// labelSet is the result of BuildLabels captured by an instrumentation. It
// is used both to register the instrument and to bind values, so the two can
// not disagree on order.
type labelSet struct {
	names  []string
	fields []Dimension
}

func newLabelSet(s Dimensions) labelSet {
	names, fields := BuildLabels(s)
	return labelSet{names: names, fields: fields}
}

func (l labelSet) empty() bool {
	return len(l.fields) == 0
}

// pairs returns the go-kit label key/value pairs for info.
func (l labelSet) pairs(info Info) []string {
	lvs := make([]string, 0, 2*len(l.fields))
	for i, d := range l.fields {
		lvs = append(lvs, l.names[i], d.Value(info))
	}
	return lvs
}
