// Package abc implements the Artificial Bee Colony optimizer (Karaboga &
// Basturk, 2007) over box-bounded real domains, and its two binary variants:
// angle-modulated ABC (AMABC) and probabilistic binary ABC (BABC).
//
// A Colony keeps ColonySize/2 food sources. Each iteration runs an employed
// phase over every food source, an onlooker phase of roulette-selected food
// sources and a scout phase that abandons food sources whose trial counter
// exceeded the scout limit. All comparisons use a transformed fitness where
// higher is better, so minimization and maximization share one rule.
//
// BinaryColony runs the same search over one continuous coordinate per bit
// and decodes positions through an Encoder before calling the cost function.
//
// Given a Seed, every draw comes from one PCG generator, so two colonies with
// equal inputs follow identical trajectories. Colonies are not safe for
// concurrent use; run independent colonies in separate goroutines instead.
package abc
