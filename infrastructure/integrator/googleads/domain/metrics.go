package adsdomain

// SearchResponse é a resposta do endpoint googleAds:search. A API devolve os
// campos int64 de métricas como strings no JSON, então a conversão numérica
// acontece no serviço.
type SearchResponse struct {
	Results       []SearchResult `json:"results"`
	NextPageToken string         `json:"nextPageToken,omitempty"`
}

type SearchResult struct {
	Campaign         *CampaignRef         `json:"campaign,omitempty"`
	AdGroup          *AdGroupRef          `json:"adGroup,omitempty"`
	AdGroupCriterion *AdGroupCriterionRef `json:"adGroupCriterion,omitempty"`
	AdGroupAd        *AdGroupAdRef        `json:"adGroupAd,omitempty"`
	CustomerClient   *CustomerClient      `json:"customerClient,omitempty"`
	Metrics          Metrics              `json:"metrics"`
	Segments         Segments             `json:"segments"`
}

type CampaignRef struct {
	ResourceName string `json:"resourceName,omitempty"`
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
}

type AdGroupRef struct {
	ResourceName string `json:"resourceName,omitempty"`
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
}

type AdGroupCriterionRef struct {
	ResourceName string `json:"resourceName,omitempty"`
	CriterionID  string `json:"criterionId"`
}

type AdGroupAdRef struct {
	ResourceName string `json:"resourceName,omitempty"`
	Ad           AdRef  `json:"ad"`
}

type AdRef struct {
	ID string `json:"id"`
}

type Metrics struct {
	Impressions      string  `json:"impressions"`
	Clicks           string  `json:"clicks"`
	CostMicros       string  `json:"costMicros"`
	Conversions      float64 `json:"conversions"`
	ConversionsValue float64 `json:"conversionsValue"`
}

type Segments struct {
	Date string `json:"date"`
}
