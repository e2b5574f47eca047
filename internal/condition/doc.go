// Package condition compiles HCL boolean expressions over game signals into
// predicates a requirement node can evaluate.
//
// An expression refers to signals through five roots:
//
//	item.<name>            number: the current count
//	setting.<name>         any: the setting's value
//	sequence_break.<name>  bool: whether the toggle is enabled
//	location.<name>        string: the location's accessibility level name
//	boss.<slot>            string: the boss assigned to the slot, "" if none
//
// Besides the HCL operators, expressions may call max, min, length, contains,
// lower and at_least(level, minimum), which compares two level names.
package condition
