package role

//go:generate go run github.com/dmarkham/enumer -type Action -trimprefix Action -transform lower -json -yaml -output action.gen.go

// Action is one of the five capability columns of a permission rule.
type Action int

const (
	ActionView Action = iota
	ActionCreate
	ActionEdit
	ActionDelete
	ActionManage
)
