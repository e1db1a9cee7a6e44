// Package vars loads variable definitions and answers variable references.
//
// A definition file is an XML document whose root element names the
// category and whose children are the variables:
//
//	<string>
//		<title>Hello</title>
//		<app>@string/title App</app>
//	</string>
//
// The same content may be written as YAML with category, locale and values
// fields. A locale variant in the file name ("strings_de.xml") or a locale
// attribute on the root selects the locale; other files hold the default.
//
// Variables are scoped to the directory of their file. A reference from a
// file resolves against that directory first, then the asset directory, the
// theme directory and any extra search directories. Values may reference
// other variables; a [Context] per top-level resolution detects cycles.
//
// A [Store] publishes an immutable [Snapshot] and replaces it atomically on
// [Store.Reload], so resolutions already in progress finish against the
// snapshot they started with.
package vars
