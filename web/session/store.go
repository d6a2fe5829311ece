package session

import (
	"encoding/base32"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sessiontodo/todo/database/model"
	"github.com/sessiontodo/todo/logger"

	"github.com/gin-contrib/sessions"
	"github.com/goccy/go-json"
	gorillasessions "github.com/gorilla/sessions"
	"github.com/gorilla/securecookie"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errSessionNotFound = errors.New("session not found")

// record is the persisted form of a session's values.
type record struct {
	IsAuth bool                `json:"isAuth"`
	User   *model.UserSnapshot `json:"user,omitempty"`
}

// Store keeps sessions in the database. The cookie only carries the signed
// session id.
type Store struct {
	db      *gorm.DB
	Codecs  []securecookie.Codec
	options *sessions.Options
	now     func() time.Time
}

// NewStore creates a database backed session store. keyPairs are passed to
// securecookie to sign (and optionally encrypt) the session id.
func NewStore(db *gorm.DB, keyPairs ...[]byte) *Store {
	return &Store{
		db:     db,
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   MaxAge,
			HttpOnly: true,
		},
		now: time.Now,
	}
}

// Options sets the default options for new sessions.
func (s *Store) Options(opts sessions.Options) {
	s.options = &opts
}

// Get returns the session cached in the request registry, loading it on first use.
func (s *Store) Get(r *http.Request, name string) (*gorillasessions.Session, error) {
	return gorillasessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie, or starts an empty one
// when the cookie is missing, forged or refers to an expired session.
func (s *Store) New(r *http.Request, name string) (*gorillasessions.Session, error) {
	session := gorillasessions.NewSession(s, name)
	session.Options = &gorillasessions.Options{
		Path:     s.options.Path,
		Domain:   s.options.Domain,
		MaxAge:   s.options.MaxAge,
		Secure:   s.options.Secure,
		HttpOnly: s.options.HttpOnly,
		SameSite: s.options.SameSite,
	}
	session.IsNew = true

	c, errCookie := r.Cookie(name)
	if errCookie != nil {
		return session, nil
	}
	if err := securecookie.DecodeMulti(name, c.Value, &session.ID, s.Codecs...); err != nil {
		session.ID = ""
		return session, nil
	}
	if err := s.load(r, session); err != nil {
		if !errors.Is(err, errSessionNotFound) {
			logger.Warning("load session failed:", err)
		}
		session.ID = ""
		return session, nil
	}
	session.IsNew = false
	return session, nil
}

// Save persists the session, or deletes it when MaxAge is negative.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, session *gorillasessions.Session) error {
	if session.Options.MaxAge < 0 {
		if err := s.delete(r, session); err != nil {
			return err
		}
		http.SetCookie(w, s.newCookie(session, ""))
		return nil
	}

	if regenerate, _ := session.Values[regenerateKey].(bool); regenerate {
		delete(session.Values, regenerateKey)
		if err := s.Regenerate(r, session); err != nil {
			return err
		}
	}

	if session.ID == "" {
		session.ID = strings.TrimRight(
			base32.StdEncoding.EncodeToString(
				securecookie.GenerateRandomKey(32),
			), "=")
	}

	if err := s.save(r, session); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.Codecs...)
	if err != nil {
		return err
	}

	http.SetCookie(w, s.newCookie(session, encoded))
	return nil
}

// Regenerate drops the stored row of session and clears its id, so the next
// save issues a new id with a fresh expiry. Cookies holding the old id stop
// resolving.
func (s *Store) Regenerate(r *http.Request, session *gorillasessions.Session) error {
	if err := s.delete(r, session); err != nil {
		return err
	}
	session.ID = ""
	session.IsNew = true
	return nil
}

func (s *Store) newCookie(session *gorillasessions.Session, value string) *http.Cookie {
	cookie := &http.Cookie{
		Name:     session.Name(),
		Value:    value,
		Path:     session.Options.Path,
		Domain:   session.Options.Domain,
		MaxAge:   session.Options.MaxAge,
		Secure:   session.Options.Secure,
		HttpOnly: session.Options.HttpOnly,
		SameSite: session.Options.SameSite,
	}
	if session.Options.MaxAge > 0 {
		cookie.Expires = s.now().Add(time.Duration(session.Options.MaxAge) * time.Second)
	}
	return cookie
}

// save upserts the session row. The expiry is fixed when the row is first
// written; later saves only replace the payload.
func (s *Store) save(r *http.Request, session *gorillasessions.Session) error {
	rec := record{}
	rec.IsAuth, _ = session.Values[isAuthKey].(bool)
	if user, ok := session.Values[loginUserKey].(model.UserSnapshot); ok {
		rec.User = &user
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	maxAge := session.Options.MaxAge
	if maxAge == 0 {
		maxAge = s.options.MaxAge
	}

	row := model.Session{
		Id:        session.ID,
		Data:      data,
		ExpiresAt: s.now().Add(time.Duration(maxAge) * time.Second).Unix(),
	}
	if rec.User != nil {
		row.Username = rec.User.Username
	}

	return s.db.WithContext(r.Context()).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "data"}),
		}).
		Create(&row).Error
}

func (s *Store) load(r *http.Request, session *gorillasessions.Session) error {
	var row model.Session
	err := s.db.WithContext(r.Context()).
		Where("id = ? AND expires_at > ?", session.ID, s.now().Unix()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errSessionNotFound
	}
	if err != nil {
		return err
	}

	var rec record
	if err := json.Unmarshal(row.Data, &rec); err != nil {
		return err
	}
	if rec.IsAuth {
		session.Values[isAuthKey] = true
	}
	if rec.User != nil {
		session.Values[loginUserKey] = *rec.User
	}
	return nil
}

func (s *Store) delete(r *http.Request, session *gorillasessions.Session) error {
	if session.ID == "" {
		return nil
	}
	return s.db.WithContext(r.Context()).
		Where("id = ?", session.ID).
		Delete(&model.Session{}).Error
}
