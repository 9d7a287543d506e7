// Package serviceiface is the lifecycle every long-running part of the
// dashboard implements so the app manager can order it.
package serviceiface

type Service interface {
	Name() string
	Start() error
	Stop() error
}
