package models

// SyncStatus состояние синхронизации группы
type SyncStatus string

const (
	StatusOffline                SyncStatus = "OFFLINE"
	StatusSyncing                SyncStatus = "SYNCING"
	StatusUpToDate               SyncStatus = "UP_TO_DATE"
	StatusConflictsDetected      SyncStatus = "CONFLICTS_DETECTED"
	StatusError                  SyncStatus = "ERROR"
	StatusAuthenticationRequired SyncStatus = "AUTHENTICATION_REQUIRED"
)
