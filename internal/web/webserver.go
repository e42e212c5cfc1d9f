// Package web provides the HTTP front door for go-ttsweb
package web

/*

	### **Files:**
	1. **`webserver_core_routes.go`** - Server setup, middleware, routes, listener lifecycle
	2. **`web_utils.go`** - Template data, template helpers, page and error rendering
	3. **`web_homePage.go`** - Root page handler ("/")
	4. **`web_reload.go`** - Debug mode: watcher -> reload hub wiring
	5. **`embedded_static.go`** - Embedded error page and reload client

*/
