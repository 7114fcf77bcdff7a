package radarsync

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/hervefr78/fga-crm/internal/models"
	"github.com/hervefr78/fga-crm/internal/startupradar"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Industry forced on investor-sourced companies so they stand out from
// startup-sourced rows sharing the company table.
const investorIndustry = "Venture capital"

// investorPrefix namespaces investor external ids away from startup ids.
const investorPrefix = "inv:"

// syncStartups upserts remote startups into companies, keyed by
// startup_radar_id. Returns the partial result and the external-id to local-id
// map that the contacts and audits phases need.
func syncStartups(ctx context.Context, tx *gorm.DB, client *startupradar.Client, ownerID uint) (*Result, map[string]uint) {
	result := &Result{}
	idMap := make(map[string]uint)

	startups, err := client.GetStartups(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetch startups: %v", err))
		return result, idMap
	}

	for _, st := range startups {
		if st.ID == 0 {
			// Upstream records without an id are expected noise, not faults.
			continue
		}

		srID := strconv.FormatInt(st.ID, 10)

		if err := upsertStartup(tx, st, srID, ownerID, result, idMap); err != nil {
			name := st.Name
			if name == "" {
				name = srID
			}
			result.Errors = append(result.Errors, fmt.Sprintf("startup %s: %v", name, err))
		}
	}

	log.Printf("[RadarSync] startups: %d created, %d updated", result.CompaniesCreated, result.CompaniesUpdated)
	return result, idMap
}

func upsertStartup(tx *gorm.DB, st startupradar.Startup, srID string, ownerID uint, result *Result, idMap map[string]uint) error {
	custom := map[string]interface{}{}
	if st.Strategy != "" {
		custom["strategy"] = st.Strategy
	}
	if st.Amount != 0 {
		custom["funding_amount"] = st.Amount
	}
	if st.Series != "" {
		custom["funding_series"] = st.Series
	}
	if st.Status != "" {
		custom["sr_status"] = st.Status
	}

	var existing models.Company
	err := tx.Where("startup_radar_id = ?", srID).First(&existing).Error

	if err == nil {
		if st.Name != "" {
			existing.Name = st.Name
		}
		if st.Website != "" {
			existing.Website = st.Website
		}
		if st.Sector != "" {
			existing.Industry = st.Sector
		}
		if st.Description != "" {
			existing.Description = st.Description
		}
		existing.CustomFields = mergeCustomFields(existing.CustomFields, custom)

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		idMap[srID] = existing.ID
		result.CompaniesUpdated++
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	name := st.Name
	if name == "" {
		name = "Unnamed startup"
	}

	company := models.Company{
		Name:           name,
		Website:        st.Website,
		Industry:       st.Sector,
		Description:    st.Description,
		CustomFields:   mergeCustomFields(nil, custom),
		StartupRadarID: &srID,
		OwnerID:        &ownerID,
	}

	if err := tx.Create(&company).Error; err != nil {
		return err
	}

	idMap[srID] = company.ID
	result.CompaniesCreated++
	return nil
}

// syncInvestors upserts remote investors into companies under the inv:
// namespace, with the industry forced to a fixed classification.
func syncInvestors(ctx context.Context, tx *gorm.DB, client *startupradar.Client, ownerID uint) *Result {
	result := &Result{}

	investors, err := client.GetInvestors(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetch investors: %v", err))
		return result
	}

	for _, inv := range investors {
		if inv.ID == 0 {
			continue
		}

		srID := investorPrefix + strconv.FormatInt(inv.ID, 10)

		if err := upsertInvestor(tx, inv, srID, ownerID, result); err != nil {
			name := inv.Name
			if name == "" {
				name = srID
			}
			result.Errors = append(result.Errors, fmt.Sprintf("investor %s: %v", name, err))
		}
	}

	log.Printf("[RadarSync] investors: %d created, %d updated", result.InvestorsCreated, result.InvestorsUpdated)
	return result
}

func upsertInvestor(tx *gorm.DB, inv startupradar.Investor, srID string, ownerID uint, result *Result) error {
	custom := map[string]interface{}{}
	if inv.StartupsCount != 0 {
		custom["portfolio_size"] = inv.StartupsCount
	}
	if inv.TotalFundingAmount != 0 {
		custom["total_invested"] = inv.TotalFundingAmount
	}

	var existing models.Company
	err := tx.Where("startup_radar_id = ?", srID).First(&existing).Error

	if err == nil {
		if inv.Name != "" {
			existing.Name = inv.Name
		}
		if inv.Website != "" {
			existing.Website = inv.Website
		}
		existing.Industry = investorIndustry
		existing.CustomFields = mergeCustomFields(existing.CustomFields, custom)

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		result.InvestorsUpdated++
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	name := inv.Name
	if name == "" {
		name = "Unknown investor"
	}

	company := models.Company{
		Name:           name,
		Website:        inv.Website,
		Industry:       investorIndustry,
		CustomFields:   mergeCustomFields(nil, custom),
		StartupRadarID: &srID,
		OwnerID:        &ownerID,
	}

	if err := tx.Create(&company).Error; err != nil {
		return err
	}

	result.InvestorsCreated++
	return nil
}

// syncContacts upserts remote contacts, resolving their startup reference to a
// local company through the map produced by the startups phase. A contact
// whose startup is unknown locally is still synced, just without the link.
func syncContacts(ctx context.Context, tx *gorm.DB, client *startupradar.Client, ownerID uint, idMap map[string]uint) *Result {
	result := &Result{}

	contacts, err := client.GetContacts(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("fetch contacts: %v", err))
		return result
	}

	for _, ct := range contacts {
		if ct.ID == 0 {
			continue
		}

		srID := strconv.FormatInt(ct.ID, 10)

		if err := upsertContact(tx, ct, srID, ownerID, result, idMap); err != nil {
			name := ct.FirstName + " " + ct.LastName
			if name == " " {
				name = srID
			}
			result.Errors = append(result.Errors, fmt.Sprintf("contact %s: %v", name, err))
		}
	}

	log.Printf("[RadarSync] contacts: %d created, %d updated", result.ContactsCreated, result.ContactsUpdated)
	return result
}

func upsertContact(tx *gorm.DB, ct startupradar.Contact, srID string, ownerID uint, result *Result, idMap map[string]uint) error {
	var companyID *uint
	if ct.StartupID != nil {
		if localID, ok := idMap[strconv.FormatInt(*ct.StartupID, 10)]; ok {
			companyID = &localID
		}
	}

	var existing models.Contact
	err := tx.Where("startup_radar_id = ?", srID).First(&existing).Error

	if err == nil {
		if ct.FirstName != "" {
			existing.FirstName = ct.FirstName
		}
		if ct.LastName != "" {
			existing.LastName = ct.LastName
		}
		if ct.Email != "" {
			existing.Email = ct.Email
		}
		if ct.EmailStatus != "" {
			existing.EmailStatus = ct.EmailStatus
		}
		if ct.Title != "" {
			existing.Title = ct.Title
		}
		if ct.LinkedinURL != "" {
			existing.LinkedinURL = ct.LinkedinURL
		}
		if ct.IsDecisionMaker != nil {
			existing.IsDecisionMaker = *ct.IsDecisionMaker
		}
		if companyID != nil {
			existing.CompanyID = companyID
		}

		if err := tx.Save(&existing).Error; err != nil {
			return err
		}

		result.ContactsUpdated++
		return nil
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	contact := models.Contact{
		FirstName:      ct.FirstName,
		LastName:       ct.LastName,
		Email:          ct.Email,
		EmailStatus:    ct.EmailStatus,
		Title:          ct.Title,
		LinkedinURL:    ct.LinkedinURL,
		Source:         "startup_radar",
		CompanyID:      companyID,
		StartupRadarID: &srID,
		OwnerID:        &ownerID,
	}
	if ct.IsDecisionMaker != nil {
		contact.IsDecisionMaker = *ct.IsDecisionMaker
	}

	if err := tx.Create(&contact).Error; err != nil {
		return err
	}

	result.ContactsCreated++
	return nil
}

// mergeCustomFields overlays freshly derived keys on the stored map. Existing
// unrelated keys survive; conflicting keys take the new value.
func mergeCustomFields(existing datatypes.JSONMap, updates map[string]interface{}) datatypes.JSONMap {
	merged := datatypes.JSONMap{}
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range updates {
		merged[k] = v
	}
	if len(merged) == 0 {
		return nil
	}
	return merged
}
