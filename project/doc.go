// Package project reads the wood.toml file at the root of a project.
//
//	name = "site"
//	locale = "en"
//	locales = ["en", "de"]
//
//	[source]
//	asset = "asset"
//	theme = "theme"
//	search = ["../shared"]
//	exclude = ["build/**", "**/*_test.xml"]
//
//	[watch]
//	debounce = "300ms"
//	rate = 2.0
//	burst = 1
//	listen = "localhost:9090"
//
//	[operators]
//	max = "max(acc, x)"
//
//	[fields]
//	title = "My Site"
//
// Directories in the WOOD_PATH environment variable are appended to the
// search list. Operators are expr-lang fold steps registered with
// [eval.Registry.RegisterExpr]. Fields answer "@project/name" references
// together with the built-in name, locale and locales entries.
package project
