package domain

// Sticker представляет элемент каталога, который можно отправить.
// После загрузки не изменяется.
type Sticker struct {
	// RemoteID — непрозрачный идентификатор файла на сервере.
	RemoteID string `json:"remote_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	// SetID и Emoji нужны только для логов.
	SetID int64  `json:"set_id"`
	Emoji string `json:"emoji,omitempty"`
}

// Stats — снимок счетчиков клиента.
type Stats struct {
	Ready         bool  `json:"ready"`
	Started       bool  `json:"started"`
	TargetChatID  int64 `json:"target_chat_id"`
	TotalSets     int   `json:"total_sets"`
	ProcessedSets int   `json:"processed_sets"`
	Stickers      int   `json:"stickers"`
	Sent          int   `json:"sent"`
	Delivered     int   `json:"delivered"`
	Quota         int   `json:"quota"`
	Restarts      int   `json:"restarts"`
}

// CatalogComplete сообщает, загружены ли все наборы стикеров.
func (s Stats) CatalogComplete() bool {
	return s.TotalSets >= 0 && s.ProcessedSets == s.TotalSets
}
