//go:build !release

// Package debug содержит проверки инвариантов. Нарушение инварианта считается ошибкой
// программиста: в обычной сборке процесс паникует, со сборочным тегом release
// проверки не выполняются.
package debug

import "fmt"

// Enabled сообщает, выполняются ли проверки в этой сборке
const Enabled = true

// Assert паникует с сообщением, если cond == false
func Assert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("нарушение инварианта: "+format, args...))
	}
}
