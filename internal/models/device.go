package models

// Device идентичность локального устройства
type Device struct {
	ID   string `json:"id"`   // UUID, генерируется при первом запуске
	Name string `json:"name"` // имя устройства для журнала
}

// DeviceInfo присутствие устройства в группе.
// Публикуется в облако на каждом цикле синхронизации.
type DeviceInfo struct {
	DeviceID   string `json:"deviceId"`
	DeviceName string `json:"deviceName"`
	AppVersion string `json:"appVersion"`
	MemberID   string `json:"memberId,omitempty"`
	LastSeen   int64  `json:"lastSeen"` // unix ms
	IsOnline   bool   `json:"isOnline"` // вычисляется при чтении, не хранится как истина
}

// Online вычисляет IsOnline относительно now (unix ms)
func (d DeviceInfo) Online(now, window int64) bool {
	if window <= 0 {
		return false
	}
	return now-d.LastSeen <= window
}

// JoinedGroup группа, в которой участвует это устройство
type JoinedGroup struct {
	GroupID  string `json:"groupId"`
	FolderID string `json:"folderId"`
	Name     string `json:"name"`
	MemberID string `json:"memberId"` // участник, от имени которого работает устройство
	JoinedAt int64  `json:"joinedAt"`
}

// Cursors курсоры синхронизации группы.
// Сохраняются только после успешной записи в удаленный журнал.
type Cursors struct {
	Local           string `json:"local"`           // последняя отправленная локальная запись
	Remote          string `json:"remote"`          // последняя обработанная удаленная запись
	ManifestVersion int64  `json:"manifestVersion"` // последняя увиденная версия манифеста
}

// ShareCode код приглашения в группу
type ShareCode struct {
	Code      string `json:"code"`
	DeepLink  string `json:"deepLink"`
	GroupID   string `json:"groupId"`
	FolderID  string `json:"folderId"`
	ExpiresAt int64  `json:"expiresAt,omitempty"` // unix ms, 0 = без срока
}

// CloudCredentials учетные данные облачного хранилища
type CloudCredentials struct {
	Endpoint  string `json:"endpoint"`
	Bucket    string `json:"bucket"`
	AccessKey string `json:"accessKey"`
	SecretKey string `json:"secretKey"`
	Region    string `json:"region,omitempty"`
	Secure    bool   `json:"secure"`
}
