// Package node speaks the munin-node text protocol.
//
// A session opens with a banner ("# munin node at <name>"), after which the
// client issues line commands. Single-line answers ("list", "cap") end with
// a newline; multi-line answers ("config", "fetch") end with a line holding
// a single dot.
package node

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/matzehuels/muninboard/pkg/munin"
)

// DefaultPort is the munin-node TCP port.
const DefaultPort = 4949

// DefaultTimeout bounds dialing and every command round trip.
const DefaultTimeout = 10 * time.Second

var bannerRE = regexp.MustCompile(`^# munin node at\s+(\S+)$`)

// ErrClosed is returned by commands issued after Close.
var ErrClosed = errors.New("munin-node connection closed")

// Client is a session with one munin-node. It is not safe for concurrent use.
type Client struct {
	conn    net.Conn
	r       *bufio.Reader
	timeout time.Duration
	banner  string
	name    string
	closed  bool
}

// Dial connects to addr ("host" or "host:port") and reads the banner.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, fmt.Sprint(DefaultPort))
	}

	d := net.Dialer{Timeout: timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial munin-node %s: %w", addr, err)
	}
	c, err := NewClient(conn, timeout)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

// NewClient starts a session over an established connection.
func NewClient(conn net.Conn, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{conn: conn, r: bufio.NewReader(conn), timeout: timeout}

	conn.SetReadDeadline(time.Now().Add(timeout))
	banner, err := c.readLine()
	if err != nil {
		return nil, fmt.Errorf("read banner: %w", err)
	}
	c.banner = banner
	if m := bannerRE.FindStringSubmatch(banner); m != nil {
		c.name = m[1]
	}
	return c, nil
}

// Banner returns the greeting line sent by the node.
func (c *Client) Banner() string { return c.banner }

// NodeName returns the node name announced in the banner, or "" when the
// banner did not carry one.
func (c *Client) NodeName() string { return c.name }

// Capabilities announces multigraph support and returns the capabilities
// the node reports back.
func (c *Client) Capabilities(ctx context.Context) ([]string, error) {
	line, err := c.command(ctx, "cap multigraph")
	if err != nil {
		return nil, err
	}
	fields := strings.Fields(line)
	if len(fields) > 0 && fields[0] == "cap" {
		fields = fields[1:]
	}
	return fields, nil
}

// List returns the plugins of node, or of the node itself when node is empty.
func (c *Client) List(ctx context.Context, node string) ([]string, error) {
	cmd := "list"
	if node != "" {
		cmd += " " + node
	}
	line, err := c.command(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return strings.Fields(line), nil
}

// Config returns the configuration of plugin as a plugin document.
func (c *Client) Config(ctx context.Context, plugin string) (munin.PluginDocument, error) {
	lines, err := c.block(ctx, "config "+plugin)
	if err != nil {
		return munin.PluginDocument{}, err
	}
	return ParseConfig(plugin, lines), nil
}

// Close ends the session.
func (c *Client) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	_, _ = c.conn.Write([]byte("quit\n"))
	return c.conn.Close()
}

// command sends cmd and reads a single-line answer.
func (c *Client) command(ctx context.Context, cmd string) (string, error) {
	if err := c.send(ctx, cmd); err != nil {
		return "", err
	}
	line, err := c.readLine()
	if err != nil {
		return "", fmt.Errorf("%s: %w", cmd, err)
	}
	return line, nil
}

// block sends cmd and reads lines up to the terminating dot. Comment lines
// are skipped.
func (c *Client) block(ctx context.Context, cmd string) ([]string, error) {
	if err := c.send(ctx, cmd); err != nil {
		return nil, err
	}
	var lines []string
	for {
		line, err := c.readLine()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cmd, err)
		}
		if line == "." {
			return lines, nil
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
}

func (c *Client) send(ctx context.Context, cmd string) error {
	if c.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	c.conn.SetDeadline(deadline)
	if _, err := c.conn.Write([]byte(cmd + "\n")); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

func (c *Client) readLine() (string, error) {
	line, err := c.r.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ParseConfig builds a plugin document from the lines of a config answer.
// "multigraph <name>" opens a new section; until the first one, directives
// belong to the section named after the plugin. "key value" sets a graph
// directive and "root.leaf value" a datasource field. Lines without a value
// are ignored.
func ParseConfig(plugin string, lines []string) munin.PluginDocument {
	doc := munin.PluginDocument{Name: plugin}
	current := -1
	section := func(name string) int {
		for i := range doc.Sections {
			if doc.Sections[i].Name == name {
				return i
			}
		}
		doc.Sections = append(doc.Sections, munin.Section{Name: name})
		return len(doc.Sections) - 1
	}

	for _, line := range lines {
		if name, ok := strings.CutPrefix(line, "multigraph "); ok {
			current = section(strings.TrimSpace(name))
			continue
		}
		key, value, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if current < 0 {
			current = section(plugin)
		}
		s := &doc.Sections[current]
		if root, leaf, dotted := strings.Cut(key, "."); dotted {
			s.Directives.SetField(root, leaf, value)
		} else {
			s.Directives.Set(key, munin.Text(value))
		}
	}
	return doc
}
