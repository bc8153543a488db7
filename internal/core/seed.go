package core

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nishantrana1982/oneonone/internal/storage"
)

// SeedFile is the YAML layout for bootstrapping an organization.
type SeedFile struct {
	Departments []SeedDepartment `yaml:"departments"`
	Users       []SeedUser       `yaml:"users"`
}

// SeedDepartment declares a department by name.
type SeedDepartment struct {
	Name string `yaml:"name"`
}

// SeedUser declares a user. Department references a department by name.
type SeedUser struct {
	Email      string `yaml:"email"`
	Name       string `yaml:"name"`
	Role       string `yaml:"role"`
	Department string `yaml:"department,omitempty"`
}

// LoadSeedFile parses an organization seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	return &seed, nil
}

// Seed loads departments and users into storage. Existing users (matched by
// email) are left untouched, so re-running a seed is safe. It returns the
// number of users created.
func (s *Service) Seed(seed *SeedFile) (int, error) {
	deptIDs := make(map[string]string)

	existing, err := s.store.ListDepartments()
	if err != nil {
		return 0, fmt.Errorf("failed to list departments: %w", err)
	}
	for _, d := range existing {
		deptIDs[d.Name] = d.ID
	}

	for _, d := range seed.Departments {
		if d.Name == "" {
			return 0, fmt.Errorf("%w: department name is required", ErrValidation)
		}
		if _, ok := deptIDs[d.Name]; ok {
			continue
		}
		record := &storage.DepartmentRecord{
			ID:        storage.GenerateID(),
			Name:      d.Name,
			CreatedAt: s.now().UTC(),
		}
		if err := s.store.SaveDepartment(record); err != nil {
			return 0, fmt.Errorf("failed to save department %s: %w", d.Name, err)
		}
		deptIDs[d.Name] = record.ID
	}

	created := 0
	for _, u := range seed.Users {
		if u.Email == "" || u.Name == "" {
			return created, fmt.Errorf("%w: user email and name are required", ErrValidation)
		}
		switch u.Role {
		case RoleEmployee, RoleReporter, RoleSuperAdmin:
		default:
			return created, fmt.Errorf("%w: unknown role %q for %s", ErrValidation, u.Role, u.Email)
		}

		if _, err := s.store.GetUserByEmail(u.Email); err == nil {
			continue
		}

		deptID := ""
		if u.Department != "" {
			id, ok := deptIDs[u.Department]
			if !ok {
				return created, fmt.Errorf("%w: unknown department %q for %s", ErrValidation, u.Department, u.Email)
			}
			deptID = id
		}

		record := &storage.UserRecord{
			ID:           storage.GenerateID(),
			Email:        u.Email,
			Name:         u.Name,
			Role:         u.Role,
			DepartmentID: deptID,
			CreatedAt:    s.now().UTC(),
		}
		if err := s.store.SaveUser(record); err != nil {
			return created, fmt.Errorf("failed to save user %s: %w", u.Email, err)
		}
		created++
	}

	return created, nil
}
