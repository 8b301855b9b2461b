package usecase

import "encoding/json"

// SignupInput és el cos JSON del formulari de la landing.
// internal_notes no hi és a propòsit: és un camp de l'operador i
// encara que el client l'enviés, el decode el descartaria.
type SignupInput struct {
	Email         string   `json:"email"`
	Name          string   `json:"name,omitempty"`
	Intent        string   `json:"intent"`
	Zones         []string `json:"zones,omitempty"`
	BudgetMin     *int64   `json:"budget_min,omitempty"`
	BudgetMax     *int64   `json:"budget_max,omitempty"`
	PropertyTypes []string `json:"property_types,omitempty"`
	Consent       bool     `json:"consent"`
	WeeklyUpdates *bool    `json:"weekly_updates,omitempty"`

	UTMSource   string `json:"utm_source,omitempty"`
	UTMMedium   string `json:"utm_medium,omitempty"`
	UTMCampaign string `json:"utm_campaign,omitempty"`
	UTMTerm     string `json:"utm_term,omitempty"`
	UTMContent  string `json:"utm_content,omitempty"`

	badName          bool
	badZones         bool
	badPropertyTypes bool
	badBudgetMin     bool
	badBudgetMax     bool
}

// UnmarshalJSON decodifica camp a camp: un camp amb el tipus equivocat
// no tomba tot el cos, es marca i la validació el reporta amb el seu
// missatge, al costat de la resta de violacions.
func (s *SignupInput) UnmarshalJSON(data []byte) error {
	var raw struct {
		Email         json.RawMessage `json:"email"`
		Name          json.RawMessage `json:"name"`
		Intent        json.RawMessage `json:"intent"`
		Zones         json.RawMessage `json:"zones"`
		BudgetMin     json.RawMessage `json:"budget_min"`
		BudgetMax     json.RawMessage `json:"budget_max"`
		PropertyTypes json.RawMessage `json:"property_types"`
		Consent       json.RawMessage `json:"consent"`
		WeeklyUpdates json.RawMessage `json:"weekly_updates"`
		UTMSource     json.RawMessage `json:"utm_source"`
		UTMMedium     json.RawMessage `json:"utm_medium"`
		UTMCampaign   json.RawMessage `json:"utm_campaign"`
		UTMTerm       json.RawMessage `json:"utm_term"`
		UTMContent    json.RawMessage `json:"utm_content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = SignupInput{}

	// email, intent i consent mal tipats queden a zero: la validació ja
	// els reporta com a obligatoris, que és el missatge que toca.
	decodeField(raw.Email, &s.Email)
	decodeField(raw.Intent, &s.Intent)
	decodeField(raw.Consent, &s.Consent)

	s.badName = !decodeField(raw.Name, &s.Name)
	s.badZones = !decodeField(raw.Zones, &s.Zones)
	s.badPropertyTypes = !decodeField(raw.PropertyTypes, &s.PropertyTypes)
	s.badBudgetMin = !decodeField(raw.BudgetMin, &s.BudgetMin)
	s.badBudgetMax = !decodeField(raw.BudgetMax, &s.BudgetMax)

	// weekly_updates mal tipat es tracta com absent (per defecte: actiu).
	decodeField(raw.WeeklyUpdates, &s.WeeklyUpdates)

	decodeField(raw.UTMSource, &s.UTMSource)
	decodeField(raw.UTMMedium, &s.UTMMedium)
	decodeField(raw.UTMCampaign, &s.UTMCampaign)
	decodeField(raw.UTMTerm, &s.UTMTerm)
	decodeField(raw.UTMContent, &s.UTMContent)

	return nil
}

func decodeField(data json.RawMessage, dst interface{}) bool {
	if len(data) == 0 || string(data) == "null" {
		return true
	}
	return json.Unmarshal(data, dst) == nil
}

// SignupOutput és l'únic que torna al client: mai la fila sencera.
type SignupOutput struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	WeeklyUpdates bool   `json:"weekly_updates"`
}
