package schemaver

import "context"

// Direction tells whether a plan applies or reverts migrations.
type Direction int

const (
	// Up applies migrations.
	Up Direction = iota
	// Down reverts migrations.
	Down
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// A Plan is the ordered list of versions needed to move from Current to Target.
type Plan struct {
	Direction Direction
	Current   int64
	Target    int64
	Versions  []int64
}

// Plan computes the steps needed to migrate to the highest available version.
func (m *Migrator) Plan(ctx context.Context) (*Plan, error) {
	catalog, err := m.Catalog()
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	return m.plan(ctx, catalog, catalog.MaxVersion())
}

// PlanTo computes the steps needed to migrate to target.
//
// target must lie within [0, MaxVersion]; 0 reverts everything.
func (m *Migrator) PlanTo(ctx context.Context, target int64) (*Plan, error) {
	catalog, err := m.Catalog()
	if err != nil {
		return nil, err
	}
	if catalog.Len() == 0 {
		return nil, ErrEmptyCatalog
	}
	return m.plan(ctx, catalog, target)
}

func (m *Migrator) plan(ctx context.Context, catalog *Catalog, target int64) (*Plan, error) {
	if err := validateTarget(catalog, target); err != nil {
		return nil, err
	}

	current, err := m.ledger.CurrentVersion(ctx)
	if err != nil {
		return nil, err
	}

	p := &Plan{Current: current, Target: target}
	if target < current {
		p.Direction = Down
		p.Versions, err = m.ledger.AppliedAfter(ctx, target)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	p.Direction = Up
	p.Versions, err = m.pendingUpTo(ctx, catalog, target)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// pendingUpTo returns the available versions up to and including target
// which were not applied yet. Applied versions unknown to the catalog are ignored.
func (m *Migrator) pendingUpTo(ctx context.Context, catalog *Catalog, target int64) ([]int64, error) {
	applied, err := m.ledger.AppliedUpTo(ctx, target)
	if err != nil {
		return nil, err
	}
	candidates := filter(catalog.Versions(), func(v int64) bool { return v <= target })
	return filterExcept(candidates, applied), nil
}

func validateTarget(catalog *Catalog, target int64) error {
	if highest := catalog.MaxVersion(); target < 0 || target > highest {
		return &InvalidTargetError{Target: target, Max: highest}
	}
	return nil
}
