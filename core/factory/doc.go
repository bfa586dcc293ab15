// Package factory provides a generic registry used to build pluggable
// modules, such as metrics sinks, from configuration entries of the form
// {type: name, conf: {...}}.
package factory
