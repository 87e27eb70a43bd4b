package mongorepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/semsync/semsync/core/calendar"
)

type (
	taskDoc struct {
		ID        string    `bson:"_id"`
		OwnerID   string    `bson:"owner_id"`
		Text      string    `bson:"text"`
		Date      string    `bson:"date"` // canonical form, sorts chronologically
		Completed bool      `bson:"completed"`
		CreatedAt time.Time `bson:"created_at"`
	}

	journalDoc struct {
		ID           string    `bson:"_id"`
		OwnerID      string    `bson:"owner_id"`
		Date         string    `bson:"date"`
		Feeling      string    `bson:"feeling"`
		Productivity int       `bson:"productivity"`
		StudyHours   float64   `bson:"study_hours"`
		Content      string    `bson:"content"`
		UpdatedAt    time.Time `bson:"updated_at"`
	}
)

func parseDate(s string) (calendar.Date, error) {
	var d calendar.Date
	if err := d.Scan(s); err != nil {
		return calendar.Date{}, errors.Wrapf(err, "decoding date %q", s)
	}
	return d, nil
}

func (doc taskDoc) toTask() (calendar.Task, error) {
	date, err := parseDate(doc.Date)
	if err != nil {
		return calendar.Task{}, err
	}
	return calendar.Task{
		ID:        doc.ID,
		OwnerID:   doc.OwnerID,
		Text:      doc.Text,
		Date:      date,
		Completed: doc.Completed,
		CreatedAt: doc.CreatedAt.UTC(),
	}, nil
}

func (doc journalDoc) toJournal() (calendar.JournalEntry, error) {
	date, err := parseDate(doc.Date)
	if err != nil {
		return calendar.JournalEntry{}, err
	}
	return calendar.JournalEntry{
		ID:           doc.ID,
		OwnerID:      doc.OwnerID,
		Date:         date,
		Feeling:      calendar.Feeling(doc.Feeling),
		Productivity: doc.Productivity,
		StudyHours:   doc.StudyHours,
		Content:      doc.Content,
		UpdatedAt:    doc.UpdatedAt.UTC(),
	}, nil
}

func dateRange(filter calendar.Filter) bson.M {
	return bson.M{
		"owner_id": filter.OwnerID,
		"date":     bson.M{"$gte": filter.From.String(), "$lte": filter.To.String()},
	}
}

type calendarRepository struct {
	tasks    *mongo.Collection
	journals *mongo.Collection
}

var _ calendar.Repository = (*calendarRepository)(nil)

func NewCalendarRepository(store *Store) calendar.Repository {
	return &calendarRepository{
		tasks:    store.db.Collection(tasksCollection),
		journals: store.db.Collection(journalsCollection),
	}
}

func (repo *calendarRepository) QueryTasks(ctx context.Context, filter calendar.Filter) ([]calendar.Task, error) {
	cur, err := repo.tasks.Find(ctx, dateRange(filter), ascending("created_at", "_id"))
	if err != nil {
		return nil, errors.Wrap(err, "finding tasks")
	}
	var docs []taskDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding tasks")
	}
	tasks := make([]calendar.Task, 0, len(docs))
	for _, doc := range docs {
		task, err := doc.toTask()
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (repo *calendarRepository) CreateTask(ctx context.Context, task calendar.Task) (calendar.Task, error) {
	doc := taskDoc{
		ID:        uuid.New().String(),
		OwnerID:   task.OwnerID,
		Text:      task.Text,
		Date:      task.Date.String(),
		Completed: task.Completed,
		CreatedAt: msUTC(task.CreatedAt),
	}
	if _, err := repo.tasks.InsertOne(ctx, doc); err != nil {
		return calendar.Task{}, errors.Wrap(err, "inserting task")
	}
	return doc.toTask()
}

func (repo *calendarRepository) UpdateTaskCompletion(ctx context.Context, ownerID, id string, completed bool) (calendar.Task, error) {
	var doc taskDoc
	err := repo.tasks.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		bson.M{"$set": bson.M{"completed": completed}},
		returnAfter(),
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return calendar.Task{}, calendar.ErrTaskNotFound
		}
		return calendar.Task{}, errors.Wrap(err, "updating task")
	}
	return doc.toTask()
}

func (repo *calendarRepository) DeleteTask(ctx context.Context, ownerID, id string) error {
	res, err := repo.tasks.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	if res.DeletedCount == 0 {
		return calendar.ErrTaskNotFound
	}
	return nil
}

func (repo *calendarRepository) GetJournal(ctx context.Context, ownerID string, date calendar.Date) (calendar.JournalEntry, error) {
	var doc journalDoc
	err := repo.journals.FindOne(ctx, bson.M{"owner_id": ownerID, "date": date.String()}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return calendar.JournalEntry{}, calendar.ErrJournalNotFound
		}
		return calendar.JournalEntry{}, errors.Wrap(err, "finding journal")
	}
	return doc.toJournal()
}

// UpsertJournal relies on the unique (owner_id, date) index: the generated id is only set on insert.
func (repo *calendarRepository) UpsertJournal(ctx context.Context, entry calendar.JournalEntry) (calendar.JournalEntry, error) {
	filter := bson.M{"owner_id": entry.OwnerID, "date": entry.Date.String()}
	update := bson.M{
		"$set": bson.M{
			"feeling":      string(entry.Feeling),
			"productivity": entry.Productivity,
			"study_hours":  entry.StudyHours,
			"content":      entry.Content,
			"updated_at":   msUTC(entry.UpdatedAt),
		},
		"$setOnInsert": bson.M{"_id": uuid.New().String()},
	}
	opts := returnAfter().SetUpsert(true)

	var doc journalDoc
	err := repo.journals.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// lost an insert race for the same day: the entry exists now, update it
		err = repo.journals.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	}
	if err != nil {
		return calendar.JournalEntry{}, errors.Wrap(err, "upserting journal")
	}
	return doc.toJournal()
}

func (repo *calendarRepository) QueryJournals(ctx context.Context, filter calendar.Filter) ([]calendar.JournalEntry, error) {
	cur, err := repo.journals.Find(ctx, dateRange(filter), ascending("date"))
	if err != nil {
		return nil, errors.Wrap(err, "finding journals")
	}
	var docs []journalDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, errors.Wrap(err, "decoding journals")
	}
	journals := make([]calendar.JournalEntry, 0, len(docs))
	for _, doc := range docs {
		entry, err := doc.toJournal()
		if err != nil {
			return nil, err
		}
		journals = append(journals, entry)
	}
	return journals, nil
}
