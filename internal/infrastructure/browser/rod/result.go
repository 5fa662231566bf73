package rod

import "github.com/ysmood/gson"

// rodResult reads by-value evaluation results without panicking on
// undefined or null.
type rodResult struct {
	v gson.JSON
}

func (r *rodResult) Bool() bool {
	if r.v.Nil() {
		return false
	}
	return r.v.Bool()
}

func (r *rodResult) Str() string {
	if r.v.Nil() {
		return ""
	}
	return r.v.Str()
}

func (r *rodResult) Num(key string) float64 {
	f := r.v.Get(key)
	if f.Nil() {
		return 0
	}
	return f.Num()
}
