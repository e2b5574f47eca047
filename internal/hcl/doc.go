// Package hcl provides the HCL implementation of catalog.Loader. Each
// requirement is a block whose type is the requirement kind and whose label
// is the requirement key:
//
//	item "sword1" {
//	  item = "sword"
//	}
//
//	any_of "can_cross" {
//	  requires = [req.hookshot, req.bomb_jump]
//	}
//
// Other requirements are referenced as req.<key>. Conditions are plain HCL
// expressions over the signal roots understood by the condition package.
package hcl
