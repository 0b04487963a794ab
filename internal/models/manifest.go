package models

import (
	"fmt"
	"slices"
)

// Role роль участника группы
type Role string

const (
	RoleLeader Role = "leader"
	RoleMember Role = "member"
	RoleViewer Role = "viewer"
)

// Valid проверяет, что роль известна
func (r Role) Valid() bool {
	return r == RoleLeader || r == RoleMember || r == RoleViewer
}

// MemberInfo участник в манифесте группы
type MemberInfo struct {
	MemberID  string   `json:"memberId"`
	Name      string   `json:"name"`
	Role      Role     `json:"role"`
	DeviceIDs []string `json:"deviceIds"`
	JoinedAt  int64    `json:"joinedAt"` // unix ms
}

// Permissions какие роли могут выполнять действия
type Permissions struct {
	CanEdit   []Role `json:"canEdit"`
	CanInvite []Role `json:"canInvite"`
	CanDelete []Role `json:"canDelete"`
}

// SyncSettings параметры синхронизации группы
type SyncSettings struct {
	ConflictWindow       int64 `json:"conflictWindow"`       // ms, 0 = весь проход синхронизации
	DeviceOnlineWindow   int64 `json:"deviceOnlineWindow"`   // ms, устройство online если lastSeen свежее
	AutoMergeAnnotations bool  `json:"autoMergeAnnotations"` // разрешить автоматическое объединение штрихов
	EncryptBlobs         bool  `json:"encryptBlobs"`         // шифровать снапшоты и файлы в облаке
}

// GroupManifest версионированный документ группы в облаке.
// Version строго растет на 1 при каждой записи.
type GroupManifest struct {
	GroupID       string       `json:"groupId"`
	Name          string       `json:"name"`
	CreatedBy     string       `json:"createdBy"`
	AppVersion    string       `json:"appVersion"`              // версия приложения последнего писателя
	MinAppVersion string       `json:"minAppVersion,omitempty"` // минимальная версия клиента
	Members       []MemberInfo `json:"members"`
	Permissions   Permissions  `json:"permissions"`
	SyncSettings  SyncSettings `json:"syncSettings"`
	CreatedAt     int64        `json:"createdAt"`
	LastModified  int64        `json:"lastModified"`
	Version       int64        `json:"version"`
}

// DefaultPermissions права по умолчанию для новой группы
func DefaultPermissions() Permissions {
	return Permissions{
		CanEdit:   []Role{RoleLeader, RoleMember},
		CanInvite: []Role{RoleLeader},
		CanDelete: []Role{RoleLeader},
	}
}

// DefaultSyncSettings настройки по умолчанию для новой группы
func DefaultSyncSettings() SyncSettings {
	return SyncSettings{
		ConflictWindow:       0,
		DeviceOnlineWindow:   5 * 60 * 1000,
		AutoMergeAnnotations: true,
	}
}

// Validate проверяет согласованность манифеста
func (m *GroupManifest) Validate() error {
	if m.GroupID == "" {
		return fmt.Errorf("manifest group id is empty")
	}
	if m.Version < 1 {
		return fmt.Errorf("manifest version must be positive, got %d", m.Version)
	}
	seen := make(map[string]struct{}, len(m.Members))
	for _, member := range m.Members {
		if member.MemberID == "" {
			return fmt.Errorf("manifest member id is empty")
		}
		if !member.Role.Valid() {
			return fmt.Errorf("member %s has unknown role %q", member.MemberID, member.Role)
		}
		if _, dup := seen[member.MemberID]; dup {
			return fmt.Errorf("duplicate member %s", member.MemberID)
		}
		seen[member.MemberID] = struct{}{}
	}
	return nil
}

// Member возвращает участника по идентификатору
func (m *GroupManifest) Member(memberID string) (*MemberInfo, bool) {
	for i := range m.Members {
		if m.Members[i].MemberID == memberID {
			return &m.Members[i], true
		}
	}
	return nil, false
}

// MemberByDevice возвращает участника, которому принадлежит устройство
func (m *GroupManifest) MemberByDevice(deviceID string) (*MemberInfo, bool) {
	for i := range m.Members {
		if slices.Contains(m.Members[i].DeviceIDs, deviceID) {
			return &m.Members[i], true
		}
	}
	return nil, false
}

// AddDevice добавляет участника или новое устройство существующего участника.
// Возвращает false, если участник с этим устройством уже есть.
func (m *GroupManifest) AddDevice(member MemberInfo, deviceID string) bool {
	if existing, ok := m.Member(member.MemberID); ok {
		if slices.Contains(existing.DeviceIDs, deviceID) {
			return false
		}
		existing.DeviceIDs = append(existing.DeviceIDs, deviceID)
		return true
	}

	member.DeviceIDs = []string{deviceID}
	m.Members = append(m.Members, member)
	return true
}

// Can проверяет право участника на действие
func (m *GroupManifest) Can(memberID string, allowed []Role) bool {
	member, ok := m.Member(memberID)
	if !ok {
		return false
	}
	return slices.Contains(allowed, member.Role)
}
