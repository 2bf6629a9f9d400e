package forum

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"clan-bot/models"

	_ "github.com/go-sql-driver/mysql" // MySQL driver for the forum database
)

// ErrDirectoryUnavailable wraps any failure to reach or query the forum
// database. Callers must not treat it as "zero matches": doing so would make
// a sync pass strip roles from everyone.
var ErrDirectoryUnavailable = errors.New("forum directory unavailable")

// Directory is the forum-side view resolved for one set of group IDs.
// Identities claimed by more than one forum account are excluded from Members
// and listed in Collisions instead.
type Directory struct {
	Members    map[string]models.ForumMember
	Collisions map[string][]models.ForumMember
}

// Client queries the external forum database for group membership and
// per-user profile fields. The underlying connection is shared, opened
// lazily, and reopened when a ping fails.
type Client struct {
	dsn     string
	timeout time.Duration

	mu sync.Mutex
	db *sql.DB
}

// NewClient creates a forum directory client for the given MySQL DSN.
// No connection is made until the first query.
func NewClient(dsn string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{dsn: dsn, timeout: timeout}
}

// conn returns a live connection, opening or reopening one as needed.
func (c *Client) conn(ctx context.Context) (*sql.DB, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.db != nil {
		if err := c.db.PingContext(ctx); err == nil {
			return c.db, nil
		}
		c.db.Close()
		c.db = nil
	}

	db, err := sql.Open("mysql", c.dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	db.SetConnMaxLifetime(10 * time.Minute)
	db.SetMaxOpenConns(2)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	c.db = db
	return db, nil
}

// Ping verifies the directory is reachable, reconnecting if necessary.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.conn(ctx)
	return err
}

// Close releases the shared connection.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.db != nil {
		c.db.Close()
		c.db = nil
	}
}

const membersQuery = `
SELECT DISTINCT u.user_id, u.username, pf.pf_discord_tag, pf.pf_division
FROM phpbb_user_group ug
JOIN phpbb_users u ON u.user_id = ug.user_id
JOIN phpbb_profile_fields_data pf ON pf.user_id = u.user_id
WHERE ug.group_id IN (%s) AND ug.user_pending = 0`

// MembersOfGroups resolves the union of the given forum groups into a
// Directory keyed by decoded discord identity. Rows without a registered
// discord identity are skipped.
func (c *Client) MembersOfGroups(ctx context.Context, groupIDs []int) (*Directory, error) {
	dir := &Directory{
		Members:    make(map[string]models.ForumMember),
		Collisions: make(map[string][]models.ForumMember),
	}
	if len(groupIDs) == 0 {
		return dir, nil
	}

	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(membersQuery, placeholders(len(groupIDs)))
	args := make([]any, len(groupIDs))
	for i, id := range groupIDs {
		args[i] = id
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			m        models.ForumMember
			rawTag   sql.NullString
			division sql.NullString
		)
		if err := rows.Scan(&m.ForumUserID, &m.ForumUsername, &rawTag, &division); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		if !rawTag.Valid || rawTag.String == "" {
			continue
		}
		m.Identity = DecodeDisplayName(rawTag.String)
		m.DisplayName = DecodeDisplayName(m.ForumUsername)
		m.Division = division.String
		dir.add(m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return dir, nil
}

// add inserts a member, demoting the identity to the collision list when a
// different forum account already claims it.
func (d *Directory) add(m models.ForumMember) {
	if claimants, ok := d.Collisions[m.Identity]; ok {
		d.Collisions[m.Identity] = append(claimants, m)
		return
	}
	if prev, ok := d.Members[m.Identity]; ok {
		if prev.ForumUserID == m.ForumUserID {
			return
		}
		delete(d.Members, m.Identity)
		d.Collisions[m.Identity] = []models.ForumMember{prev, m}
		return
	}
	d.Members[m.Identity] = m
}

const groupsQuery = `SELECT group_id, group_name FROM phpbb_groups WHERE group_name LIKE ?`

// GroupsLike returns group ID to name for groups matching the clan's naming
// convention, e.g. "AOD %".
func (c *Client) GroupsLike(ctx context.Context, pattern string) (map[int]string, error) {
	db, err := c.conn(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, groupsQuery, pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer rows.Close()

	groups := make(map[int]string)
	for rows.Next() {
		var (
			id   int
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
		}
		groups[id] = DecodeDisplayName(name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	return groups, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
