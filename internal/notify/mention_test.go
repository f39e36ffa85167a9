package notify

import (
	"reflect"
	"testing"

	"github.com/harborcrm/flowboard/internal/models"
)

func testMembers() []models.Member {
	// Sorted by user ID, as Members() returns them.
	return []models.Member{
		{UserID: "u-alice", Email: "alice@example.com", DisplayName: "Alice Jones"},
		{UserID: "u-bob", Email: "bob.smith@example.com", DisplayName: "Bob Smith"},
		{UserID: "u-carol", Email: "carol@example.com", DisplayName: "Carol-Anne Smith"},
	}
}

func TestExtractMentions_ExactEmailLocalPart(t *testing.T) {
	got := ExtractMentions("ping @alice about this", testMembers())
	if !reflect.DeepEqual(got, []string{"u-alice"}) {
		t.Errorf("mentions = %v, want [u-alice]", got)
	}
}

func TestExtractMentions_DisplayNameFragment(t *testing.T) {
	got := ExtractMentions("@jones should review", testMembers())
	if !reflect.DeepEqual(got, []string{"u-alice"}) {
		t.Errorf("mentions = %v, want [u-alice]", got)
	}
}

func TestExtractMentions_PrefixFallback(t *testing.T) {
	got := ExtractMentions("cc @ali", testMembers())
	if !reflect.DeepEqual(got, []string{"u-alice"}) {
		t.Errorf("mentions = %v, want [u-alice]", got)
	}
}

func TestExtractMentions_ExactBeatsPrefix(t *testing.T) {
	// "bob" is Bob's exact email local-part even though it also prefixes
	// "bob.smith@example.com".
	got := ExtractMentions("thanks @bob.smith", testMembers())
	if !reflect.DeepEqual(got, []string{"u-bob"}) {
		t.Errorf("mentions = %v, want [u-bob]", got)
	}
}

func TestExtractMentions_AmbiguousPrefixPicksFirstMember(t *testing.T) {
	// "smith" prefixes a handle of both Bob and Carol; membership order
	// (sorted by user ID) breaks the tie.
	got := ExtractMentions("@smith take a look", testMembers())
	if !reflect.DeepEqual(got, []string{"u-bob"}) {
		t.Errorf("mentions = %v, want [u-bob]", got)
	}
}

func TestExtractMentions_DeduplicatesAndIgnoresUnknown(t *testing.T) {
	got := ExtractMentions("@alice @alice @zz-nobody", testMembers())
	if !reflect.DeepEqual(got, []string{"u-alice"}) {
		t.Errorf("mentions = %v, want [u-alice]", got)
	}
}

func TestExtractMentions_RequiresBoundary(t *testing.T) {
	// An @ inside a word (an email address) is not a mention.
	if got := ExtractMentions("mail me at alice@example.com", testMembers()); got != nil {
		t.Errorf("mentions = %v, want nil", got)
	}
	if got := ExtractMentions("no mentions here", testMembers()); got != nil {
		t.Errorf("mentions = %v, want nil", got)
	}
}

func TestExtractMentions_MultipleDistinct(t *testing.T) {
	got := ExtractMentions("@alice and @carol please sync", testMembers())
	if !reflect.DeepEqual(got, []string{"u-alice", "u-carol"}) {
		t.Errorf("mentions = %v, want [u-alice u-carol]", got)
	}
}
