package abc

import (
	"encoding/json"
	"fmt"
	"math"
)

// State is everything needed to continue a colony in another process:
// population, cached best, counters, agent log and random generator state.
type State struct {
	Foods  []FoodSource    `json:"foods"`
	Best   FoodSource      `json:"best"`
	Status Status          `json:"status"`
	Agents [][][]float64   `json:"agents,omitempty"`
	Rand   []byte          `json:"rand"`
	Result *BinarySolution `json:"result,omitempty"`
}

// State captures the colony. The agent log is included but not cleared.
func (c *Colony) State() (*State, error) {
	rnd, err := c.rng.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to capture random state: %w", err)
	}
	agents := c.agents.Snapshots(false)
	if len(agents) == 0 {
		agents = nil
	}
	return &State{
		Foods:  c.Population(),
		Best:   c.best.clone(),
		Status: c.status,
		Agents: agents,
		Rand:   rnd,
	}, nil
}

// Restore rebuilds a colony from a captured state. cost, bounds and cfg
// must describe the same problem the state was taken from.
func Restore(cost CostFunc, bounds Boundaries, cfg Config, st *State) (*Colony, error) {
	if err := validate(cost, bounds, cfg); err != nil {
		return nil, err
	}
	rng := &Rand{}
	if err := checkState(st, bounds, cfg.FoodSources()); err != nil {
		return nil, err
	}
	if err := rng.UnmarshalBinary(st.Rand); err != nil {
		return nil, err
	}
	c := newColony(cost, bounds, cfg, continuousGuard(cfg), rng)
	c.load(st)
	return c, nil
}

func checkState(st *State, bounds Boundaries, foods int) error {
	if st == nil {
		return &ConfigError{Field: "State", Reason: "cannot be nil"}
	}
	if len(st.Foods) != foods {
		return &ConfigError{
			Field:  "State.Foods",
			Reason: fmt.Sprintf("has %d food sources, config needs %d", len(st.Foods), foods),
		}
	}
	for i, f := range st.Foods {
		if len(f.Position) != bounds.Dim() {
			return &ConfigError{
				Field:  fmt.Sprintf("State.Foods[%d]", i),
				Reason: fmt.Sprintf("has dimension %d, bounds have %d", len(f.Position), bounds.Dim()),
			}
		}
	}
	if len(st.Best.Position) != bounds.Dim() {
		return &ConfigError{Field: "State.Best", Reason: "dimension does not match bounds"}
	}
	return nil
}

func (c *Colony) load(st *State) {
	c.foods = make(Population, len(st.Foods))
	for i, f := range st.Foods {
		c.foods[i] = f.clone()
	}
	c.best = st.Best.clone()
	c.status = st.Status
	for _, snap := range st.Agents {
		c.agents.append(snap)
	}
}

// foodJSON keeps non-finite costs, which encoding/json rejects as numbers.
type foodJSON struct {
	Position []float64 `json:"position"`
	Cost     jsonFloat `json:"cost"`
	Fitness  jsonFloat `json:"fitness"`
	Trials   int       `json:"trials"`
}

func (f FoodSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(foodJSON{
		Position: f.Position,
		Cost:     jsonFloat(f.Cost),
		Fitness:  jsonFloat(f.Fitness),
		Trials:   f.Trials,
	})
}

func (f *FoodSource) UnmarshalJSON(data []byte) error {
	var fj foodJSON
	if err := json.Unmarshal(data, &fj); err != nil {
		return err
	}
	f.Position = fj.Position
	f.Cost = float64(fj.Cost)
	f.Fitness = float64(fj.Fitness)
	f.Trials = fj.Trials
	return nil
}

// jsonFloat writes NaN and infinities as the strings "NaN", "+Inf", "-Inf".
type jsonFloat float64

func (v jsonFloat) MarshalJSON() ([]byte, error) {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(f)
}

func (v *jsonFloat) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "NaN":
			*v = jsonFloat(math.NaN())
		case "+Inf":
			*v = jsonFloat(math.Inf(1))
		case "-Inf":
			*v = jsonFloat(math.Inf(-1))
		default:
			return fmt.Errorf("invalid float token %q", s)
		}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = jsonFloat(f)
	return nil
}

type solutionJSON struct {
	Position []float64 `json:"position"`
	Cost     jsonFloat `json:"cost"`
}

func (s Solution) MarshalJSON() ([]byte, error) {
	return json.Marshal(solutionJSON{Position: s.Position, Cost: jsonFloat(s.Cost)})
}

func (s *Solution) UnmarshalJSON(data []byte) error {
	var sj solutionJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}
	s.Position = sj.Position
	s.Cost = float64(sj.Cost)
	return nil
}

type binarySolutionJSON struct {
	Bits    []bool    `json:"bits"`
	Cost    jsonFloat `json:"cost"`
	Count   int       `json:"count"`
	Samples int       `json:"samples"`
}

func (s BinarySolution) MarshalJSON() ([]byte, error) {
	return json.Marshal(binarySolutionJSON{
		Bits:    s.Bits,
		Cost:    jsonFloat(s.Cost),
		Count:   s.Count,
		Samples: s.Samples,
	})
}

func (s *BinarySolution) UnmarshalJSON(data []byte) error {
	var bj binarySolutionJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return err
	}
	s.Bits = bj.Bits
	s.Cost = float64(bj.Cost)
	s.Count = bj.Count
	s.Samples = bj.Samples
	return nil
}
