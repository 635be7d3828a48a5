// Package errors provides structured, coded errors for reactor.
//
// Errors carry a registered code, a category, a one-line message and an
// optional detail, suggestion and source location. Template compile errors
// point at the offending line of the template; the CLI prints them with
// Format.
//
// # Error Codes
//
//   - R: renderer (missing render function, template compile failure, bad vnode type)
//   - C: template compiler
//   - P: wire protocol
//   - L: live sessions
//   - CFG: configuration
//   - CLI: command line
//
// # Usage
//
//	err := errors.New("C002").
//	    WithSource(template, 3, 5).
//	    WithDetail(`element <div> is never closed`)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR C002: Missing closing tag
//	//
//	//   template:3:5
//	//
//	//       2 │ <ul>
//	//   →   3 │   <div>
//	//         │     ^
//	//       4 │ </ul>
//	//
//	//   element <div> is never closed
package errors
