// Package yamlcatalog provides a YAML implementation of catalog.Loader.
//
//	requirements:
//	  - key: sword1
//	    kind: item
//	    item: sword
//	  - key: can_cross
//	    kind: any_of
//	    requires: [hookshot, bomb_jump]
//	  - key: many_crystals
//	    kind: condition
//	    when: item.crystal >= 7
//
// References are plain requirement keys. Conditions are HCL expression
// strings, exactly as in the HCL catalog format.
package yamlcatalog
