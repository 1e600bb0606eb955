package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/seqlab/counterseq/pkg/sequencer"
	"github.com/seqlab/counterseq/pkg/study"
)

var _ Store = (*Mongo)(nil)

// Mongo is a store backed by MongoDB, with studies and assignments kept in
// their own collections and replaced wholesale by ID.
type Mongo struct {
	client      *mongo.Client
	studies     *mongo.Collection
	assignments *mongo.Collection
}

// MongoConfig configures the MongoDB backend.
type MongoConfig struct {
	URI      string
	Database string
}

// NewMongo connects to MongoDB and verifies the connection with a ping.
// An empty database name defaults to "counterseq".
func NewMongo(ctx context.Context, cfg MongoConfig) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}
	name := cfg.Database
	if name == "" {
		name = "counterseq"
	}
	db := client.Database(name)
	return &Mongo{
		client:      client,
		studies:     db.Collection("studies"),
		assignments: db.Collection("assignments"),
	}, nil
}

// Seeds are bit-cast to int64 on the way into BSON, which has no uint64.
type mongoStudy struct {
	ID        string      `bson:"_id"`
	Name      string      `bson:"name"`
	Design    mongoDesign `bson:"design"`
	Seed      int64       `bson:"seed"`
	CreatedAt time.Time   `bson:"created_at"`
}

type mongoDesign struct {
	Name    string        `bson:"name"`
	Window  int           `bson:"window"`
	Fold    int           `bson:"fold"`
	Seed    *int64        `bson:"seed,omitempty"`
	Append  string        `bson:"append,omitempty"`
	Factors []mongoFactor `bson:"factors"`
}

type mongoFactor struct {
	Name   string   `bson:"name"`
	Levels []string `bson:"levels"`
}

type mongoAssignment struct {
	ID          string       `bson:"_id"`
	StudyID     string       `bson:"study_id"`
	Participant string       `bson:"participant"`
	Index       int          `bson:"index"`
	Seed        int64        `bson:"seed"`
	Trials      []mongoTrial `bson:"trials"`
	CreatedAt   time.Time    `bson:"created_at"`
}

type mongoTrial struct {
	Symbol int      `bson:"symbol"`
	Levels []string `bson:"levels"`
}

func toMongoStudy(st *study.Study) mongoStudy {
	return mongoStudy{
		ID:        st.ID,
		Name:      st.Name,
		Design:    toMongoDesign(&st.Design),
		Seed:      int64(st.Seed),
		CreatedAt: st.CreatedAt,
	}
}

func fromMongoStudy(doc mongoStudy) *study.Study {
	return &study.Study{
		ID:        doc.ID,
		Name:      doc.Name,
		Design:    fromMongoDesign(doc.Design),
		Seed:      uint64(doc.Seed),
		CreatedAt: doc.CreatedAt,
	}
}

func toMongoDesign(d *sequencer.Design) mongoDesign {
	doc := mongoDesign{
		Name:    d.Name,
		Window:  d.Window,
		Fold:    d.Fold,
		Append:  d.Append,
		Factors: make([]mongoFactor, len(d.Factors)),
	}
	if d.Seed != nil {
		seed := int64(*d.Seed)
		doc.Seed = &seed
	}
	for i, f := range d.Factors {
		doc.Factors[i] = mongoFactor{Name: f.Name, Levels: f.Levels}
	}
	return doc
}

func fromMongoDesign(doc mongoDesign) sequencer.Design {
	d := sequencer.Design{
		Name:    doc.Name,
		Window:  doc.Window,
		Fold:    doc.Fold,
		Append:  doc.Append,
		Factors: make([]sequencer.Factor, len(doc.Factors)),
	}
	if doc.Seed != nil {
		seed := uint64(*doc.Seed)
		d.Seed = &seed
	}
	for i, f := range doc.Factors {
		d.Factors[i] = sequencer.Factor{Name: f.Name, Levels: f.Levels}
	}
	return d
}

func toMongoAssignment(a *study.Assignment) mongoAssignment {
	doc := mongoAssignment{
		ID:          a.ID,
		StudyID:     a.StudyID,
		Participant: a.Participant,
		Index:       a.Index,
		Seed:        int64(a.Seed),
		Trials:      make([]mongoTrial, len(a.Trials)),
		CreatedAt:   a.CreatedAt,
	}
	for i, tr := range a.Trials {
		doc.Trials[i] = mongoTrial{Symbol: tr.Symbol, Levels: tr.Levels}
	}
	return doc
}

func fromMongoAssignment(doc mongoAssignment) *study.Assignment {
	a := &study.Assignment{
		ID:          doc.ID,
		StudyID:     doc.StudyID,
		Participant: doc.Participant,
		Index:       doc.Index,
		Seed:        uint64(doc.Seed),
		Trials:      make([]sequencer.Trial, len(doc.Trials)),
		CreatedAt:   doc.CreatedAt,
	}
	for i, tr := range doc.Trials {
		a.Trials[i] = sequencer.Trial{Symbol: tr.Symbol, Levels: tr.Levels}
	}
	return a
}

func (m *Mongo) PutStudy(ctx context.Context, st *study.Study) error {
	doc := toMongoStudy(st)
	_, err := m.studies.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store study: %w", err)
	}
	return nil
}

func (m *Mongo) GetStudy(ctx context.Context, id string) (*study.Study, error) {
	var doc mongoStudy
	err := m.studies.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get study: %w", err)
	}
	return fromMongoStudy(doc), nil
}

func (m *Mongo) ListStudies(ctx context.Context) ([]*study.Study, error) {
	sort := bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}
	cur, err := m.studies.Find(ctx, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}
	var docs []mongoStudy
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list studies: %w", err)
	}
	out := make([]*study.Study, len(docs))
	for i, doc := range docs {
		out[i] = fromMongoStudy(doc)
	}
	return out, nil
}

func (m *Mongo) DeleteStudy(ctx context.Context, id string) error {
	res, err := m.studies.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete study: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	if _, err := m.assignments.DeleteMany(ctx, bson.M{"study_id": id}); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}
	return nil
}

func (m *Mongo) PutAssignment(ctx context.Context, a *study.Assignment) error {
	doc := toMongoAssignment(a)
	_, err := m.assignments.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("store assignment: %w", err)
	}
	return nil
}

func (m *Mongo) ListAssignments(ctx context.Context, studyID string) ([]*study.Assignment, error) {
	sort := bson.D{{Key: "index", Value: 1}}
	cur, err := m.assignments.Find(ctx, bson.M{"study_id": studyID}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	var docs []mongoAssignment
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	out := make([]*study.Assignment, len(docs))
	for i, doc := range docs {
		out[i] = fromMongoAssignment(doc)
	}
	return out, nil
}

func (m *Mongo) CountAssignments(ctx context.Context, studyID string) (int, error) {
	n, err := m.assignments.CountDocuments(ctx, bson.M{"study_id": studyID})
	if err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return int(n), nil
}

func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
