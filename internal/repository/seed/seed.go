// Package seed loads the demo fixture into any repository.Store.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/vet-admin-api/internal/model"
	"github.com/jwalitptl/vet-admin-api/internal/repository"
)

//go:embed fixture.yaml
var fixtureYAML []byte

var relativeDate = regexp.MustCompile(`^today(?:([+-])(\d+))?$`)

type staffFixture struct {
	model.Staff `yaml:",inline"`
	Password    string `yaml:"password"`
}

// Fixture is the decoded demo data set.
type Fixture struct {
	Staff          []staffFixture         `yaml:"staff"`
	Patients       []*model.Patient       `yaml:"patients"`
	Appointments   []*model.Appointment   `yaml:"appointments"`
	Bills          []*model.Bill          `yaml:"bills"`
	LabResults     []*model.LabResult     `yaml:"lab_results"`
	Inventory      []*model.InventoryItem `yaml:"inventory"`
	StockMovements []*model.StockMovement `yaml:"stock_movements"`
	Notifications  []*model.Notification  `yaml:"notifications"`
}

// Raw returns the embedded fixture as written.
func Raw() []byte {
	return fixtureYAML
}

// Parse decodes data, resolving today/today±N relative to now.
func Parse(data []byte, now time.Time) (*Fixture, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if err := resolveDates(&root, model.StartOfDay(now)); err != nil {
		return nil, err
	}

	var f Fixture
	if err := root.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &f, nil
}

func resolveDates(n *yaml.Node, today time.Time) error {
	if n.Kind == yaml.ScalarNode {
		m := relativeDate.FindStringSubmatch(n.Value)
		if m == nil {
			return nil
		}
		day := today
		if m[2] != "" {
			offset, err := strconv.Atoi(m[2])
			if err != nil {
				return fmt.Errorf("line %d: invalid date offset %q", n.Line, n.Value)
			}
			if m[1] == "-" {
				offset = -offset
			}
			day = day.AddDate(0, 0, offset)
		}
		n.Tag = "!!timestamp"
		n.Value = day.Format(model.DateLayout)
		return nil
	}

	for _, child := range n.Content {
		if err := resolveDates(child, today); err != nil {
			return err
		}
	}
	return nil
}

// Hasher turns a plain password into the stored hash.
type Hasher func(password string) (string, error)

// Load parses the embedded fixture and writes it through store.
func Load(ctx context.Context, store *repository.Store, hash Hasher, now time.Time) error {
	f, err := Parse(fixtureYAML, now)
	if err != nil {
		return err
	}
	return f.Apply(ctx, store, hash, now)
}

// Apply writes every fixture record, filling in the denormalised display names.
func (f *Fixture) Apply(ctx context.Context, store *repository.Store, hash Hasher, now time.Time) error {
	staffNames := make(map[string]string, len(f.Staff))
	for i := range f.Staff {
		s := f.Staff[i].Staff
		if f.Staff[i].Password != "" {
			h, err := hash(f.Staff[i].Password)
			if err != nil {
				return fmt.Errorf("failed to hash password for %s: %w", s.Name, err)
			}
			s.PasswordHash = h
		}
		s.Touch(now)
		if err := store.Staff.Create(ctx, &s); err != nil {
			return fmt.Errorf("failed to seed staff %s: %w", s.Name, err)
		}
		staffNames[s.ID.String()] = s.Name
	}

	patients := make(map[string]*model.Patient, len(f.Patients))
	for _, p := range f.Patients {
		p.Touch(now)
		if err := store.Patients.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed patient %s: %w", p.Name, err)
		}
		patients[p.ID.String()] = p
	}

	for _, a := range f.Appointments {
		if p, ok := patients[a.PatientID.String()]; ok {
			a.PatientName = p.Name
			a.OwnerName = p.Owner.Name
		}
		a.VeterinarianName = staffNames[a.VeterinarianID.String()]
		a.Touch(now)
		if err := store.Appointments.Create(ctx, a); err != nil {
			return fmt.Errorf("failed to seed appointment: %w", err)
		}
	}

	for _, b := range f.Bills {
		b.Touch(now)
		if err := store.Bills.Create(ctx, b); err != nil {
			return fmt.Errorf("failed to seed bill: %w", err)
		}
	}

	for _, l := range f.LabResults {
		if p, ok := patients[l.PatientID.String()]; ok {
			l.PatientName = p.Name
		}
		l.Touch(now)
		if err := store.LabResults.Create(ctx, l); err != nil {
			return fmt.Errorf("failed to seed lab result: %w", err)
		}
	}

	for _, item := range f.Inventory {
		item.Touch(now)
		if err := store.Inventory.Create(ctx, item); err != nil {
			return fmt.Errorf("failed to seed inventory item %s: %w", item.SKU, err)
		}
	}

	for _, m := range f.StockMovements {
		if err := store.Inventory.AddMovement(ctx, m); err != nil {
			return fmt.Errorf("failed to seed stock movement: %w", err)
		}
	}

	for _, n := range f.Notifications {
		n.Touch(now)
		if err := store.Notifications.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to seed notification: %w", err)
		}
	}

	return nil
}
