// Package compiler turns HTML-like templates into render functions.
//
// The pipeline has three stages. Parse builds an AST from the template
// source, failing fast on malformed markup. Transform merges adjacent text
// and interpolations into compound nodes and records which runtime helpers
// the template needs. Compile then builds a vdom.RenderFunc that walks the
// transformed AST against the component's RenderContext.
//
// Supported syntax:
//
//	<div class="greeting">hi, {{ user.name }}</div>
//	<input :value="draft" @input="onInput" />
//	<br>
//
// Static attributes become props as-is. A leading ':' binds the attribute to
// a context path and a leading '@' binds an event handler (@click becomes
// the onClick prop). Interpolations accept dotted paths only; they are
// resolved through RenderContext.Get and unwrapped through refs, reactive
// objects and arrays.
//
// Register installs Compile as the renderer's template compiler so
// components can declare a Template instead of a Render function.
package compiler
