// Package application provides application initialization and dependency
// wiring. It builds the omit set from the loaded settings and exposes one
// method per tool operation (validate, show, report), making the main
// package cleaner and more focused on CLI parsing and orchestration.
package application
