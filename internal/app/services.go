package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sitebuilder/internal/canvas"
	"sitebuilder/internal/config"
	"sitebuilder/internal/document"
	"sitebuilder/internal/domain"
	"sitebuilder/internal/imagegen"
	"sitebuilder/internal/publish"
	"sitebuilder/internal/secret"
	"sitebuilder/internal/service"
	"sitebuilder/internal/storage"
	"sitebuilder/internal/storage/mongostore"
)

// Services is the application core shared by the desktop app and the
// headless commands: one open session plus the services around it.
type Services struct {
	Config     *config.Config
	Session    *document.Session
	Controller *canvas.Controller
	Projects   *service.ProjectService
	Images     *service.ImageService
	Logos      *service.LogoService
	Publisher  publish.Publisher // nil when publishing is disabled
	Window     *service.WindowSettingsService
	Autosave   *service.Autosaver

	link   *service.FileLink
	closer func(context.Context) error
}

// Open connects the configured store and wires the services around a new
// session. Session changes are forwarded to emitter. secrets may be nil.
func Open(ctx context.Context, cfg *config.Config, emitter service.EventEmitter, secrets secret.SecretStore) (*Services, error) {
	projects, logos, settings, closer, err := openStores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	gen := imagegen.NewClient(resolveSecret(cfg.ImageGen.APIKey, secrets, secret.KeyImageGenAPIKey))
	if cfg.ImageGen.BaseURL != "" {
		gen.BaseURL = cfg.ImageGen.BaseURL
	}
	if cfg.ImageGen.Model != "" {
		gen.Model = cfg.ImageGen.Model
	}

	sess := document.New(document.DefaultName, document.WithListener(service.SessionListener(ctx, emitter)))
	projectSvc := service.NewProjectService(projects, emitter)

	s := &Services{
		Config:     cfg,
		Session:    sess,
		Controller: canvas.NewController(sess),
		Projects:   projectSvc,
		Images:     service.NewImageService(gen, emitter),
		Logos:      service.NewLogoService(gen, logos),
		Publisher:  newPublisher(cfg.Publish, secrets),
		Window:     service.NewWindowSettingsService(settings),
		Autosave:   service.NewAutosaver(projectSvc, sess, cfg.Autosave),
		closer:     closer,
	}
	projectSvc.OnSaved(s.writeLinked)
	return s, nil
}

// openStores opens the SQL database or the Mongo store. Settings are only
// kept by the SQL stores; with Mongo the window size falls back to defaults.
func openStores(ctx context.Context, cfg *config.Config) (domain.ProjectStore, domain.LogoStore, service.SettingsStore, func(context.Context) error, error) {
	if cfg.Storage.Driver == config.DriverMongo {
		st, err := mongostore.Connect(ctx, cfg.Storage.DSN, cfg.Storage.Database)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("open mongo store: %w", err)
		}
		log.Printf("[STORE] Using mongo database %s", cfg.Storage.Database)
		return st, st, nil, st.Close, nil
	}

	db, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	log.Printf("[STORE] Using %s", cfg.Storage.Driver)
	closer := func(context.Context) error { return db.Close() }
	return storage.NewProjectStore(db), storage.NewLogoStore(db), storage.NewSettingsStore(db), closer, nil
}

func newPublisher(cfg config.PublishConfig, secrets secret.SecretStore) publish.Publisher {
	switch cfg.Target {
	case config.PublishDisk:
		return publish.NewDiskPublisher(cfg.Dir)
	case config.PublishS3:
		s3cfg := cfg.S3
		s3cfg.SecretAccessKey = resolveSecret(s3cfg.SecretAccessKey, secrets, secret.KeyS3SecretKey)
		return publish.NewS3Publisher(publish.NewS3Client(s3cfg), s3cfg)
	}
	return nil
}

// resolveSecret prefers an explicit value and falls back to the store.
func resolveSecret(explicit string, secrets secret.SecretStore, key string) string {
	if explicit != "" || secrets == nil {
		return explicit
	}
	v, err := secrets.Get(key)
	if err != nil {
		log.Printf("[SECRET] Read %s failed: %v", key, err)
		return ""
	}
	return string(v)
}

// DefaultSecrets reads the environment first and the OS keychain second.
func DefaultSecrets() secret.SecretStore {
	return secret.NewChainStore(secret.NewEnvStore(""), secret.NewKeychainStore(""))
}

// Link mirrors the session to a JSON document file: the file is loaded
// (or created) now, reloaded whenever it changes on disk and rewritten
// after every save.
func (s *Services) Link(ctx context.Context, path string, emitter service.EventEmitter) error {
	link, err := service.NewFileLink(path, s.Session, emitter)
	if err != nil {
		return err
	}
	if err := link.Load(); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	if err := link.Watch(ctx); err != nil {
		return err
	}
	s.link = link
	return nil
}

// writeLinked stores a saved project in the linked file, if any.
func (s *Services) writeLinked(ctx context.Context, p domain.Project) error {
	if s.link == nil {
		return nil
	}
	return s.link.WriteProject(ctx, p)
}

// Close stops background work, waits for running saves, saves unsaved
// changes and closes the store.
func (s *Services) Close(ctx context.Context) error {
	s.Autosave.Stop()
	s.Projects.Wait(ctx)

	var errs []error
	if _, err := s.Projects.SaveIfDirty(ctx, s.Session); err != nil {
		errs = append(errs, fmt.Errorf("final save: %w", err))
	}
	if s.link != nil {
		s.link.Stop()
	}
	s.Projects.Wait(ctx)
	if s.closer != nil {
		if err := s.closer(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	return errors.Join(errs...)
}
