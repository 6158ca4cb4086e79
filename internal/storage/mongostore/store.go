// Package mongostore persists projects and logos in MongoDB, using the
// collection layout of the original web backend ("projects" keyed by
// project_id, "logos" keyed by logo_id).
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"sitebuilder/internal/domain"
)

const (
	projectsCollection = "projects"
	logosCollection    = "logos"
)

// Store implements domain.ProjectStore and domain.LogoStore.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client for uri and uses database dbName.
func Connect(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Printf("[MONGO] Connected, database: %s", dbName)
	return &Store{client: client, db: client.Database(dbName)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) projects() *mongo.Collection { return s.db.Collection(projectsCollection) }
func (s *Store) logos() *mongo.Collection    { return s.db.Collection(logosCollection) }

// ── Projects ───────────────────────────────────────────────

func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	if _, err := s.projects().InsertOne(ctx, toProjectDoc(p)); err != nil {
		return fmt.Errorf("create project: %w", err)
	}
	return nil
}

func (s *Store) GetProject(ctx context.Context, id string) (*domain.Project, error) {
	var doc projectDoc
	err := s.projects().FindOne(ctx, bson.M{"project_id": id},
		options.FindOne().SetProjection(bson.M{"_id": 0}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, &domain.NotFoundError{Resource: "project", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	p := doc.project()
	return &p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]domain.Project, error) {
	cur, err := s.projects().Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 0}).SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	var docs []projectDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	out := make([]domain.Project, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.project())
	}
	return out, nil
}

func (s *Store) UpdateProject(ctx context.Context, p *domain.Project) error {
	doc := toProjectDoc(p)
	res, err := s.projects().UpdateOne(ctx, bson.M{"project_id": p.ID}, bson.M{"$set": bson.M{
		"name":       doc.Name,
		"components": doc.Components,
		"updated_at": doc.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	if res.MatchedCount == 0 {
		return &domain.NotFoundError{Resource: "project", ID: p.ID}
	}
	return nil
}

func (s *Store) DeleteProject(ctx context.Context, id string) error {
	res, err := s.projects().DeleteOne(ctx, bson.M{"project_id": id})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return &domain.NotFoundError{Resource: "project", ID: id}
	}
	return nil
}

// ── Logos ──────────────────────────────────────────────────

func (s *Store) SaveLogo(ctx context.Context, l *domain.Logo) error {
	if _, err := s.logos().InsertOne(ctx, toLogoDoc(l)); err != nil {
		return fmt.Errorf("save logo: %w", err)
	}
	return nil
}

func (s *Store) ListLogos(ctx context.Context) ([]domain.Logo, error) {
	cur, err := s.logos().Find(ctx, bson.M{},
		options.Find().SetProjection(bson.M{"_id": 0}).SetSort(bson.D{{Key: "created_at", Value: -1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("list logos: %w", err)
	}
	var docs []logoDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list logos: %w", err)
	}
	out := make([]domain.Logo, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.logo())
	}
	return out, nil
}
