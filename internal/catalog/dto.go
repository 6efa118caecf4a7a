package catalog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/mmcdole/explorador/internal/domain"
)

// flexInt decodes an integer sent either as a JSON number or a numeric string
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*n = flexInt(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = flexInt(f)
	return nil
}

// capitalField decodes cityCapital, which is either a name or an object with a name
type capitalField string

func (c *capitalField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*c = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = capitalField(s)
		return nil
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*c = capitalField(obj.Name)
	return nil
}

type departmentDTO struct {
	ID          flexInt      `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	CityCapital capitalField `json:"cityCapital"`
	Population  flexInt      `json:"population"`
	Surface     float64      `json:"surface"`
}

type cityDTO struct {
	ID           flexInt `json:"id"`
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Population   flexInt `json:"population"`
	PostalCode   string  `json:"postalCode"`
	DepartmentID flexInt `json:"departmentId"`
}

func (d departmentDTO) toDomain() domain.Department {
	desc := ""
	if d.Description != nil {
		desc = *d.Description
	}
	return domain.Department{
		ID:          int(d.ID),
		Name:        d.Name,
		Description: desc,
		CityCapital: string(d.CityCapital),
		Population:  int64(d.Population),
		Surface:     d.Surface,
	}
}

func mapDepartments(dtos []departmentDTO) []domain.Department {
	deps := make([]domain.Department, 0, len(dtos))
	for _, d := range dtos {
		deps = append(deps, d.toDomain())
	}
	return deps
}

func mapCities(dtos []cityDTO, departmentID int) []domain.City {
	cities := make([]domain.City, 0, len(dtos))
	for _, c := range dtos {
		desc := ""
		if c.Description != nil {
			desc = *c.Description
		}
		depID := int(c.DepartmentID)
		if depID == 0 {
			depID = departmentID
		}
		cities = append(cities, domain.City{
			ID:           int(c.ID),
			DepartmentID: depID,
			Name:         c.Name,
			Description:  desc,
			Population:   int64(c.Population),
			PostalCode:   c.PostalCode,
		})
	}
	return cities
}
