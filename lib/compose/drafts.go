package compose

import (
	"fmt"

	"git.sr.ht/~exteditor/exteditor/lib/codec"
	"git.sr.ht/~exteditor/exteditor/lib/session"
	"git.sr.ht/~exteditor/exteditor/log"
)

// Drafts is the set of open compose windows. Targets are numbered from 1
// in the order the drafts were opened.
type Drafts struct {
	drafts []*Draft
}

// Open reads every draft. Nothing is opened if one of them fails.
func Open(paths ...string) (*Drafts, error) {
	d := &Drafts{}
	for _, path := range paths {
		draft, err := ReadDraft(path)
		if err != nil {
			return nil, err
		}
		d.drafts = append(d.drafts, draft)
		log.Debugf("draft %d: %s (%s)", len(d.drafts), path, draft.Mode())
	}
	return d, nil
}

// Targets returns the target of every open draft.
func (d *Drafts) Targets() []int {
	targets := make([]int, len(d.drafts))
	for i := range d.drafts {
		targets[i] = i + 1
	}
	return targets
}

func (d *Drafts) Get(target int) (*Draft, error) {
	if target < 1 || target > len(d.drafts) {
		return nil, fmt.Errorf("no compose window %d", target)
	}
	return d.drafts[target-1], nil
}

func (d *Drafts) Details(target int) (Details, error) {
	draft, err := d.Get(target)
	if err != nil {
		return Details{}, err
	}
	return Details{
		Target:      target,
		Fields:      draft.Fields(),
		Body:        draft.Body(),
		IsPlainText: draft.Mode() == session.Plain,
	}, nil
}

// SetDetails applies edited text to a draft and saves it.
func (d *Drafts) SetDetails(target int, mode session.Mode, values codec.Values, body string) error {
	draft, err := d.Get(target)
	if err != nil {
		return err
	}
	draft.Update(mode, values, body)
	if err := draft.Save(); err != nil {
		return err
	}
	log.Tracef("draft %d saved", target)
	return nil
}
