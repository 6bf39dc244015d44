// Package frontend loads programs written in HCL into the ir form.
//
// A program file declares classes, their methods and initial memory:
//
//	class "app.Main" {
//	  method "sum" {
//	    param "n" { type = "int" }
//	    local "acc" { type = "long" }
//	    local "i" { type = "int" }
//	    result = "long"
//	    export = "sum"
//
//	    body {
//	      while {
//	        condition = i < n
//	        body {
//	          set "acc" { value = acc + i }
//	          set "i" { value = i + 1 }
//	        }
//	      }
//	      return { value = acc }
//	    }
//	  }
//	}
//
//	data {
//	  offset = 16
//	  text   = "hello"
//	}
//
// Statements are the blocks set, eval, return, if (with then and else),
// while and throw, in source order. Expressions use HCL operators; &&
// and || evaluate both sides. The functions and, or, xor, shl, shr and
// ushr cover the bitwise operators.
//
// Calls name their target as method(...) within the same class,
// Class::method(...) by simple class name, or pkg::Class::method(...)
// by fully qualified name. Calls to virtual methods go through the call
// table.
package frontend
