package lints

import "strings"

// angularLifecycleHooks are invoked by the Angular runtime, not by user
// code, so the naming convention says nothing about how they are called.
var angularLifecycleHooks = map[string]struct{}{
	"ngOnChanges":           {},
	"ngOnInit":              {},
	"ngDoCheck":             {},
	"ngAfterContentInit":    {},
	"ngAfterContentChecked": {},
	"ngAfterViewInit":       {},
	"ngAfterViewChecked":    {},
	"ngOnDestroy":           {},
}

// isLifecycleHook reports whether name is an Angular lifecycle hook,
// optionally carrying the Async suffix (ngOnInitAsync).
func isLifecycleHook(name string) bool {
	if _, ok := angularLifecycleHooks[name]; ok {
		return true
	}
	_, ok := angularLifecycleHooks[strings.TrimSuffix(name, asyncSuffix)]
	return ok
}
