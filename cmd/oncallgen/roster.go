package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/clinicrota/oncallgen/internal/rosterstore"
	"github.com/clinicrota/oncallgen/internal/staff"
)

const defaultRosterFile = "roster.yaml"

// rosterFileEntry is the on-disk shape of one roster member, kept
// separate from rosterstore.Entry so the store's ID type can evolve
// without touching the file format.
type rosterFileEntry struct {
	ID                  string `yaml:"id"`
	Name                string `yaml:"name"`
	Role                string `yaml:"role"`
	DefaultTargetShifts int    `yaml:"default_target_shifts"`
}

func loadRoster(path string) (*rosterstore.Store, error) {
	store := rosterstore.New()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading roster file: %w", err)
	}

	var entries []rosterFileEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing roster file: %w", err)
	}

	for _, e := range entries {
		role, err := staff.ParseRole(e.Role)
		if err != nil {
			return nil, fmt.Errorf("loading roster entry %q: %w", e.Name, err)
		}
		err = store.Restore(rosterstore.Entry{
			ID:                  e.ID,
			Name:                e.Name,
			Role:                role,
			DefaultTargetShifts: e.DefaultTargetShifts,
		})
		if err != nil {
			return nil, fmt.Errorf("loading roster entry %q: %w", e.Name, err)
		}
	}
	return store, nil
}

func saveRoster(path string, store *rosterstore.Store) error {
	entries := store.List()
	out := make([]rosterFileEntry, len(entries))
	for i, e := range entries {
		out[i] = rosterFileEntry{
			ID:                  e.ID,
			Name:                e.Name,
			Role:                e.Role.String(),
			DefaultTargetShifts: e.DefaultTargetShifts,
		}
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("serializing roster: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing roster file: %w", err)
	}
	return nil
}

func runRosterList(path string) error {
	store, err := loadRoster(path)
	if err != nil {
		return err
	}

	entries := store.List()
	if len(entries) == 0 {
		fmt.Println("No staff in roster.")
		return nil
	}

	fmt.Printf("%-20s %-14s %-6s %s\n", "Name", "Role", "Target", "ID")
	for _, e := range entries {
		fmt.Printf("%-20s %-14s %-6d %s\n", e.Name, e.Role.String(), e.DefaultTargetShifts, e.ID)
	}
	return nil
}

func runRosterAdd(path, name, role string, targetShifts int) error {
	store, err := loadRoster(path)
	if err != nil {
		return err
	}

	entry, err := store.Create(name, role, targetShifts)
	if err != nil {
		return err
	}
	if err := saveRoster(path, store); err != nil {
		return err
	}

	fmt.Printf("✓ Added %s (%s) with id %s\n", entry.Name, entry.Role.String(), entry.ID)
	return nil
}

func runRosterUpdate(path, id string, name, role *string, targetShifts *int) error {
	store, err := loadRoster(path)
	if err != nil {
		return err
	}

	entry, err := store.Update(id, name, role, targetShifts)
	if err != nil {
		return err
	}
	if err := saveRoster(path, store); err != nil {
		return err
	}

	fmt.Printf("✓ Updated %s (%s), target shifts %d\n", entry.Name, entry.Role.String(), entry.DefaultTargetShifts)
	return nil
}

func runRosterRemove(path, id string) error {
	store, err := loadRoster(path)
	if err != nil {
		return err
	}

	if err := store.Delete(id); err != nil {
		return err
	}
	if err := saveRoster(path, store); err != nil {
		return err
	}

	fmt.Printf("✓ Removed %s\n", id)
	return nil
}
