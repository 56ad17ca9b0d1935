// Package session 保存服务端会话：anti-forgery state、登录身份、flash 消息。
package session

import (
	"context"
	"encoding/json"
	"errors"
)

// Identity 已登录身份，所有字段同时写入/清除
type Identity struct {
	UserID         uint   `json:"user_id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Picture        string `json:"picture"`
	Provider       string `json:"provider"`
	AccessToken    string `json:"access_token"`
	ProviderUserID string `json:"provider_user_id"`
}

// State Identity 为 nil 即匿名
type State struct {
	StateToken string    `json:"state,omitempty"`
	Identity   *Identity `json:"identity,omitempty"`
	Flashes    []string  `json:"flashes,omitempty"`

	dirty bool
}

func (s *State) Authenticated() bool { return s != nil && s.Identity != nil }

// UserID 匿名返回 0
func (s *State) UserID() uint {
	if !s.Authenticated() {
		return 0
	}
	return s.Identity.UserID
}

func (s *State) SetStateToken(tok string) {
	s.StateToken = tok
	s.dirty = true
}

func (s *State) SetIdentity(id *Identity) {
	s.Identity = id
	s.dirty = true
}

func (s *State) ClearIdentity() {
	s.Identity = nil
	s.dirty = true
}

func (s *State) AddFlash(msg string) {
	s.Flashes = append(s.Flashes, msg)
	s.dirty = true
}

// PopFlashes 取出并清空
func (s *State) PopFlashes() []string {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.dirty = true
	return out
}

// Dirty 本次请求是否修改过
func (s *State) Dirty() bool { return s.dirty }

var ErrEmptySID = errors.New("session: empty id")

// Store 缺失的 sid 返回全新匿名 State，不报错
type Store interface {
	Load(ctx context.Context, sid string) (*State, error)
	Save(ctx context.Context, sid string, st *State) error
	Delete(ctx context.Context, sid string) error
}

func encode(st *State) ([]byte, error) { return json.Marshal(st) }

func decode(b []byte) (*State, error) {
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
