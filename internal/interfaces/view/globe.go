package view

//go:generate templ generate

// GlobeConfig попадает в страницу JSON-блоком #globe-config, его читает globe.js.
type GlobeConfig struct {
	AccessToken    string `json:"accessToken,omitempty"`
	CesiumIonToken string `json:"cesiumIonToken,omitempty"`
	ActivitiesURL  string `json:"activitiesUrl"`
	StreamURL      string `json:"streamUrl"`
	CacheURL       string `json:"cacheUrl,omitempty"`
	PathWidth      int    `json:"pathWidth"`
}

// GlobePage содержит данные для рендера главной страницы
type GlobePage struct {
	Authorized    bool
	LoginURL      string
	CesiumBaseURL string
	Config        GlobeConfig
}
