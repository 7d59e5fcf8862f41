package dto

import (
	"unibook/internal/domains/facility/model"
	"unibook/shared"
	"unibook/shared/constant"
	"unibook/shared/timeparse"
)

type FacilityResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Campus           string   `json:"campus"`
	Category         string   `json:"category"`
	Capacity         int      `json:"capacity"`
	OpenTime         string   `json:"open_time"`
	CloseTime        string   `json:"close_time"`
	Amenities        []string `json:"amenities"`
	Equipment        []string `json:"equipment"`
	UnderMaintenance bool     `json:"under_maintenance"`
	UpdatedAt        string   `json:"updated_at"`
}

func (r *FacilityResponse) FromModel(facility model.Facility, alwaysOnUtilities []string) {
	r.ID = facility.ID
	r.Name = facility.Name
	r.Campus = facility.Campus
	r.Category = facility.Category
	r.Capacity = facility.Capacity
	r.OpenTime = facility.OperatingHours.Open
	r.CloseTime = facility.OperatingHours.Close
	r.Amenities = facility.Amenities
	r.Equipment = facility.BookableEquipment(alwaysOnUtilities)
	r.UnderMaintenance = facility.UnderMaintenance
	r.UpdatedAt = timeparse.FormatBackend(facility.UpdatedAtRaw, constant.DateFormat)
}

type GetFacilitiesResponse struct {
	Facilities []FacilityResponse `json:"facilities"`
	TotalPage  int                `json:"total_page"`
	TotalData  int                `json:"total_data"`
}

func (r *GetFacilitiesResponse) FromModels(models []model.Facility, totalData, limit int, alwaysOnUtilities []string) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Facilities = make([]FacilityResponse, len(models))
	for i, mod := range models {
		r.Facilities[i].FromModel(mod, alwaysOnUtilities)
	}
}
