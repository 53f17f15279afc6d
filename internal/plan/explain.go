package plan

import (
	"strings"

	"github.com/leengari/idxscan/internal/domain/schema"
)

// Explain renders a scan spec as a tree: project over filter over
// index-join over scan, omitting the stages the scan does not need.
func Explain(spec *ScanSpec) Node {
	top := &ProjectNode{Columns: spec.Columns}
	top.Metadata()["columns"] = strings.Join(spec.Columns, ", ")

	if spec.Empty {
		top.AddChild(&EmptyNode{})
		return top
	}

	scan := &ScanNode{
		Table:     spec.Table.Name,
		Index:     spec.Index.Name,
		Direction: spec.Direction.String(),
		Span:      spec.Span.String(),
	}
	scan.Metadata()["table"] = spec.Table.Name + "@" + spec.Index.Name
	scan.Metadata()["spans"] = spec.Span.String()
	if spec.Direction == schema.Descending {
		scan.Metadata()["direction"] = "reverse"
	}
	if spec.Forced {
		scan.Metadata()["forced"] = true
	}

	var node Node = scan
	if spec.NeedsFetch() {
		join := &IndexJoinNode{Table: spec.Table.Name}
		join.Metadata()["table"] = spec.Table.Name + "@primary"
		join.AddChild(node)
		node = join
	}

	if spec.Residual.Len() > 0 {
		filter := &FilterNode{Filter: spec.Residual.Predicate().String()}
		filter.Metadata()["filter"] = filter.Filter
		filter.AddChild(node)
		node = filter
	}

	top.AddChild(node)
	return top
}
