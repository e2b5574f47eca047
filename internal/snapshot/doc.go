// Package snapshot loads game state into an in-memory signal store. A state
// file is YAML:
//
//	items:
//	  sword: 1
//	settings:
//	  mode: open
//	sequence_breaks:
//	  bomb_jump: true
//	locations:
//	  tower_of_hera: partial
//	bosses:
//	  eastern_palace: armos
//
// Single values can also be changed with assignments of the form
// root.name=value, where value is an HCL literal or a bare word.
package snapshot
