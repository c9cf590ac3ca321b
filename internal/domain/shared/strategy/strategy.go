// Package strategy defines the pluggable policies that order supply lots and
// average costs. Implementations live in infrastructure/strategy.
package strategy

// Kind groups strategies that answer the same question
type Kind string

const (
	KindLot  Kind = "lot"
	KindCost Kind = "cost"
)

// Strategy is a policy registered under a unique name within its kind
type Strategy interface {
	Name() string
	Kind() Kind
}
