package repository

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// memCollection is an in-memory Collection implementation covering the
// operator subset the document mappers emit: equality, $gte, $lte, $ne,
// $exists, case-insensitive regex values, $set/$unset updates, sort, skip
// and limit. Unique specs mimic the unique indexes of the real store.
type memCollection struct {
	mu     sync.Mutex
	docs   []bson.M
	unique []uniqueSpec
}

type uniqueSpec struct {
	field string
	ci    bool
}

func newMemCollection(unique ...uniqueSpec) *memCollection {
	return &memCollection{unique: unique}
}

// newFakeID yields an identifier that is guaranteed not to be in the store
func newFakeID() primitive.ObjectID {
	return primitive.NewObjectID()
}

func toDoc(v interface{}) (bson.M, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func norm(v interface{}) interface{} {
	switch x := v.(type) {
	case time.Time:
		return x.UnixMilli()
	case primitive.DateTime:
		return x.Time().UnixMilli()
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case primitive.ObjectID:
		return "oid:" + x.Hex()
	default:
		return v
	}
}

func equalVals(a, b interface{}) bool {
	return norm(a) == norm(b)
}

// cmpVals returns -1, 0 or 1; comparable kinds only
func cmpVals(a, b interface{}) int {
	switch av := norm(a).(type) {
	case int64:
		bv, ok := norm(b).(int64)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case string:
		bv, ok := norm(b).(string)
		if !ok {
			return 0
		}
		return strings.Compare(av, bv)
	case float64:
		bv, ok := norm(b).(float64)
		if !ok {
			return 0
		}
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	}
	return 0
}

func matchDoc(doc bson.M, filter bson.M) bool {
	for key, cond := range filter {
		value, exists := doc[key]
		switch c := cond.(type) {
		case bson.M:
			for op, arg := range c {
				switch op {
				case "$gte":
					if !exists || cmpVals(value, arg) < 0 {
						return false
					}
				case "$lte":
					if !exists || cmpVals(value, arg) > 0 {
						return false
					}
				case "$ne":
					if exists && equalVals(value, arg) {
						return false
					}
				case "$exists":
					if exists != arg.(bool) {
						return false
					}
				default:
					return false
				}
			}
		case primitive.Regex:
			s, ok := value.(string)
			if !ok {
				return false
			}
			pattern := c.Pattern
			if strings.Contains(c.Options, "i") {
				pattern = "(?i)" + pattern
			}
			re, err := regexp.Compile(pattern)
			if err != nil || !re.MatchString(s) {
				return false
			}
		default:
			if !exists || !equalVals(value, cond) {
				return false
			}
		}
	}
	return true
}

func (c *memCollection) violates(doc bson.M) bool {
	for _, u := range c.unique {
		value, ok := doc[u.field]
		if !ok {
			continue
		}
		for _, existing := range c.docs {
			ev, ok := existing[u.field]
			if !ok {
				continue
			}
			if u.ci {
				a, aok := value.(string)
				b, bok := ev.(string)
				if aok && bok && strings.EqualFold(a, b) {
					return true
				}
				continue
			}
			if equalVals(value, ev) {
				return true
			}
		}
	}
	return false
}

func (c *memCollection) InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, err := toDoc(document)
	if err != nil {
		return nil, err
	}
	if _, ok := doc["_id"]; !ok {
		doc["_id"] = primitive.NewObjectID()
	}
	if c.violates(doc) {
		return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{
			{Code: 11000, Message: "duplicate key error"},
		}}
	}
	c.docs = append(c.docs, doc)
	return &mongo.InsertOneResult{InsertedID: doc["_id"]}, nil
}

func asFilter(filter interface{}) bson.M {
	if f, ok := filter.(bson.M); ok {
		return f
	}
	doc, err := toDoc(filter)
	if err != nil {
		return bson.M{}
	}
	return doc
}

func (c *memCollection) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := asFilter(filter)
	for _, doc := range c.docs {
		if matchDoc(doc, f) {
			return mongo.NewSingleResultFromDocument(doc, nil, nil)
		}
	}
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (c *memCollection) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := asFilter(filter)
	var matches []bson.M
	for _, doc := range c.docs {
		if matchDoc(doc, f) {
			matches = append(matches, doc)
		}
	}

	var sortSpec bson.D
	var limit, skip int64 = -1, 0
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if opt.Sort != nil {
			if s, ok := opt.Sort.(bson.D); ok {
				sortSpec = s
			}
		}
		if opt.Limit != nil {
			limit = *opt.Limit
		}
		if opt.Skip != nil {
			skip = *opt.Skip
		}
	}

	if sortSpec != nil {
		sort.SliceStable(matches, func(i, j int) bool {
			for _, key := range sortSpec {
				cmp := cmpVals(matches[i][key.Key], matches[j][key.Key])
				if cmp == 0 {
					continue
				}
				if dir, ok := key.Value.(int); ok && dir < 0 {
					return cmp > 0
				}
				return cmp < 0
			}
			return false
		})
	}

	if skip > 0 {
		if skip > int64(len(matches)) {
			skip = int64(len(matches))
		}
		matches = matches[skip:]
	}
	if limit >= 0 && int64(len(matches)) > limit {
		matches = matches[:limit]
	}

	docs := make([]interface{}, len(matches))
	for i, doc := range matches {
		docs[i] = doc
	}
	return mongo.NewCursorFromDocuments(docs, nil, nil)
}

func (c *memCollection) UpdateOne(ctx context.Context, filter interface{}, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := asFilter(filter)
	u, ok := update.(bson.M)
	if !ok {
		return &mongo.UpdateResult{}, nil
	}

	for _, doc := range c.docs {
		if !matchDoc(doc, f) {
			continue
		}
		if set, ok := u["$set"].(bson.M); ok {
			for k, v := range set {
				doc[k] = v
			}
		}
		if unset, ok := u["$unset"].(bson.M); ok {
			for k := range unset {
				delete(doc, k)
			}
		}
		return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
	}
	return &mongo.UpdateResult{}, nil
}

func (c *memCollection) DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := asFilter(filter)
	var kept []bson.M
	var deleted int64
	for _, doc := range c.docs {
		if matchDoc(doc, f) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	c.docs = kept
	return &mongo.DeleteResult{DeletedCount: deleted}, nil
}

func (c *memCollection) CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := asFilter(filter)
	var n int64
	for _, doc := range c.docs {
		if matchDoc(doc, f) {
			n++
		}
	}
	return n, nil
}
