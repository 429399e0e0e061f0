package persistence

import (
	"os"

	json "github.com/goccy/go-json"

	"tripsync/internal/models"
	"tripsync/internal/persistence/interfaces"
	"tripsync/internal/providers"
	"tripsync/internal/services"
)

type FileManager struct {
	service    services.TripServiceInterface
	compressor interfaces.CompressorInterface
	logger     providers.Logger
}

func NewFileManager(compressor interfaces.CompressorInterface, service services.TripServiceInterface, logger providers.Logger) *FileManager {
	return &FileManager{
		compressor: compressor,
		service:    service,
		logger:     logger,
	}
}

func (f *FileManager) SaveToFile(fileName string) error {
	snapshot := f.service.GetSnapshot()

	jsonData, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	data, err := f.compressor.Compress(jsonData)
	if err != nil {
		return err
	}

	tmpFile := fileName + ".tmp"
	file, err := os.Create(tmpFile)
	if err != nil {
		return err
	}

	_, err = file.Write(data)
	if err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Sync(); err != nil {
		file.Close()
		os.Remove(tmpFile)
		return err
	}

	if err = file.Close(); err != nil {
		os.Remove(tmpFile)
		return err
	}

	return os.Rename(tmpFile, fileName)
}

func (f *FileManager) Close() {
	f.compressor.Close()
}

// LoadFromFile restores the engine from disk. A missing file is fine;
// corrupt or unmigratable data logs a warning and leaves the defaults
// in place. When the stored version was upgraded, the upgraded form is
// persisted immediately.
func (f *FileManager) LoadFromFile(fileName string) error {
	data, err := os.ReadFile(fileName)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	decompressed, err := f.compressor.Decompress(data)
	if err != nil {
		// Early deployments wrote plain JSON.
		decompressed = data
	}

	var probe versionProbe
	storedVersion := 0
	if err := json.Unmarshal(decompressed, &probe); err == nil {
		storedVersion = probe.Version
	}

	snapshot := Migrate(decompressed, f.logger)
	if snapshot == nil {
		f.logger.Warnf(providers.TypeApp, "Snapshot unusable, starting from defaults")
		return nil
	}

	f.service.PutSnapshot(snapshot)

	if storedVersion != models.SnapshotVersion {
		if err := f.SaveToFile(fileName); err != nil {
			f.logger.Warnf(providers.TypeApp, "Failed to persist migrated snapshot: %s", err)
		}
	}
	return nil
}
