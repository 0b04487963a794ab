package manifest

import "path"

// Раскладка папки группы в облаке:
//
//	groups/<folderId>/manifest.json
//	groups/<folderId>/changelog.json
//	groups/<folderId>/objects/<entityId>/<checksum>.json
//	groups/<folderId>/files/<entityId>/<fileChecksum>
//	groups/<folderId>/devices/<deviceId>.json
//	sharecodes/<CODE>.json
const (
	groupsRoot     = "groups"
	shareCodesRoot = "sharecodes"
)

// GroupPrefix returns the folder prefix of a group, with a trailing slash
func GroupPrefix(folderID string) string {
	return path.Join(groupsRoot, folderID) + "/"
}

// ManifestPath путь манифеста группы
func ManifestPath(folderID string) string {
	return path.Join(groupsRoot, folderID, "manifest.json")
}

// ChangeLogPath путь журнала изменений группы
func ChangeLogPath(folderID string) string {
	return path.Join(groupsRoot, folderID, "changelog.json")
}

// ObjectPath путь снимка сущности (адресуется контрольной суммой)
func ObjectPath(folderID, entityID, checksum string) string {
	return path.Join(groupsRoot, folderID, "objects", entityID, checksum+".json")
}

// FilePath путь содержимого файла песни
func FilePath(folderID, entityID, fileChecksum string) string {
	return path.Join(groupsRoot, folderID, "files", entityID, fileChecksum)
}

// DevicesPrefix префикс объектов присутствия устройств
func DevicesPrefix(folderID string) string {
	return path.Join(groupsRoot, folderID, "devices") + "/"
}

// DevicePath путь объекта присутствия устройства
func DevicePath(folderID, deviceID string) string {
	return path.Join(groupsRoot, folderID, "devices", deviceID+".json")
}

// ShareCodePath путь записи реестра кодов приглашения
func ShareCodePath(code string) string {
	return path.Join(shareCodesRoot, code+".json")
}
