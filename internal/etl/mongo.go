package etl

import (
	"context"
	"fmt"
	"time"

	"github.com/BartekS5/ufmigrate/pkg/logger"
	"github.com/BartekS5/ufmigrate/pkg/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collPreValueSources = "prevaluesources"
	collForms           = "forms"
	collWorkflows       = "workflows"
	collRecords         = "records"
	collRecordFields    = "recordfields"
)

// MongoDestination writes the new forms schema to MongoDB. The client must
// be created with database.Registry so ids are stored as strings.
type MongoDestination struct {
	Client   *mongo.Client
	Database string
	Now      func() time.Time
}

func NewMongoDestination(client *mongo.Client, database string) *MongoDestination {
	return &MongoDestination{
		Client:   client,
		Database: database,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}

func (m *MongoDestination) coll(name string) *mongo.Collection {
	return m.Client.Database(m.Database).Collection(name)
}

func (m *MongoDestination) InsertPreValueSource(ctx context.Context, pvs *models.PreValueSource) error {
	pvs.ID = uuid.New()
	if _, err := m.coll(collPreValueSources).InsertOne(ctx, pvs); err != nil {
		return fmt.Errorf("failed to insert pre-value source %q: %w", pvs.Name, err)
	}
	return nil
}

// UpdatePreValueSource upserts under the caller's id.
func (m *MongoDestination) UpdatePreValueSource(ctx context.Context, pvs *models.PreValueSource) error {
	if pvs.ID == uuid.Nil {
		return fmt.Errorf("pre-value source %q has no id", pvs.Name)
	}
	filter := bson.M{"_id": pvs.ID.String()}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.coll(collPreValueSources).ReplaceOne(ctx, filter, pvs, opts); err != nil {
		return fmt.Errorf("failed to update pre-value source %s: %w", pvs.ID, err)
	}
	return nil
}

func (m *MongoDestination) PreValueSources(ctx context.Context) ([]models.PreValueSource, error) {
	opts := options.Find().SetSort(bson.M{"name": 1})
	cursor, err := m.coll(collPreValueSources).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pre-value sources: %w", err)
	}
	defer cursor.Close(ctx)

	var out []models.PreValueSource
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode pre-value sources: %w", err)
	}
	return out, nil
}

// InsertForm keeps a caller-supplied id and stamps Created/Updated. Field
// aliases are only assigned by UpdateForm.
func (m *MongoDestination) InsertForm(ctx context.Context, form *models.Form) (*models.Form, error) {
	if form.ID == uuid.Nil {
		form.ID = uuid.New()
	}
	form.Created = m.Now()
	form.Updated = form.Created
	if _, err := m.coll(collForms).InsertOne(ctx, form); err != nil {
		return nil, fmt.Errorf("failed to insert form %s: %w", form.ID, err)
	}
	return form, nil
}

func (m *MongoDestination) UpdateForm(ctx context.Context, form *models.Form) error {
	form.AssignAliases()
	form.Updated = m.Now()
	res, err := m.coll(collForms).ReplaceOne(ctx, bson.M{"_id": form.ID.String()}, form)
	if err != nil {
		return fmt.Errorf("failed to update form %s: %w", form.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("form %s not found", form.ID)
	}
	return nil
}

func (m *MongoDestination) InsertWorkflow(ctx context.Context, form *models.Form, wf *models.Workflow) error {
	wf.Form = form.ID
	if _, err := m.coll(collWorkflows).InsertOne(ctx, wf); err != nil {
		return fmt.Errorf("failed to insert workflow %s: %w", wf.ID, err)
	}
	return nil
}

// InsertRecord writes the record and its field value rows. It mints the
// record id and stamps Created/Updated with the current time.
func (m *MongoDestination) InsertRecord(ctx context.Context, rec *models.Record, form *models.Form) error {
	rec.ID = uuid.New()
	rec.Form = form.ID
	rec.Created = m.Now()
	rec.Updated = rec.Created

	if _, err := m.coll(collRecords).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to insert record of form %s: %w", form.ID, err)
	}

	if len(rec.RecordFields) == 0 {
		return nil
	}
	rows := make([]interface{}, 0, len(rec.RecordFields))
	for _, rf := range rec.RecordFields {
		rf.Record = rec.ID
		rows = append(rows, rf)
	}
	res, err := m.coll(collRecordFields).InsertMany(ctx, rows)
	if err != nil {
		return fmt.Errorf("failed to insert field values of record %s: %w", rec.ID, err)
	}
	logger.Debugf("Record %s: %d field values written", rec.ID, len(res.InsertedIDs))
	return nil
}

// UpdateRecordTimestamps sets only created/updated, leaving the field
// value rows alone.
func (m *MongoDestination) UpdateRecordTimestamps(ctx context.Context, rec *models.Record) error {
	update := bson.M{"$set": bson.M{"created": rec.Created, "updated": rec.Updated}}
	res, err := m.coll(collRecords).UpdateOne(ctx, bson.M{"_id": rec.ID.String()}, update)
	if err != nil {
		return fmt.Errorf("failed to reset timestamps of record %s: %w", rec.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("record %s not found", rec.ID)
	}
	return nil
}
