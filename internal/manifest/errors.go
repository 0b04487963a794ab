package manifest

import "errors"

var (
	// ErrManifestNotFound манифест группы отсутствует
	ErrManifestNotFound = errors.New("manifest not found")
	// ErrManifestCorrupt манифест или журнал не разбирается или не проходит проверку
	ErrManifestCorrupt = errors.New("manifest corrupt")
	// ErrManifestConflict условная запись не удалась после всех повторов
	ErrManifestConflict = errors.New("manifest update conflict")
	// ErrManifestExists манифест уже создан
	ErrManifestExists = errors.New("manifest already exists")
	// ErrObjectNotFound снимок сущности или файл отсутствует
	ErrObjectNotFound = errors.New("remote object not found")
	// ErrObjectCorrupt контрольная сумма загруженного объекта не совпадает
	ErrObjectCorrupt = errors.New("remote object checksum mismatch")
)
