package chat

import "testing"

func TestEncodeOfferBody(t *testing.T) {
	body := EncodeOfferBody(OfferPayload{OfferID: "of-1", ImageURL: "http://img/x.jpg"})
	want := "[tradeoffer]http://img/x.jpg|of-1"
	if body != want {
		t.Fatalf("EncodeOfferBody = %q, want %q", body, want)
	}

	body = EncodeOfferBody(OfferPayload{OfferID: "of-1", ImageURL: "http://img/x.jpg", Outcome: OutcomeAccepted})
	want = "[tradeoffer]http://img/x.jpg|of-1|ACCEPTED"
	if body != want {
		t.Fatalf("EncodeOfferBody with outcome = %q, want %q", body, want)
	}
}

func TestDecodeOfferBody(t *testing.T) {
	payload, ok := DecodeOfferBody("[tradeoffer]http://img/x.jpg|of-1|REJECTED")
	if !ok {
		t.Fatalf("DecodeOfferBody rejected a valid body")
	}
	if payload.OfferID != "of-1" || payload.ImageURL != "http://img/x.jpg" || payload.Outcome != OutcomeRejected {
		t.Fatalf("DecodeOfferBody = %+v", payload)
	}

	for _, body := range []string{
		"plain text",
		"[tradeoffer]",
		"[tradeoffer]img|",
		"[tradeoffer]|of-1",
		"[tradeoffer]img|of-1|MAYBE",
	} {
		if _, ok := DecodeOfferBody(body); ok {
			t.Fatalf("DecodeOfferBody(%q) accepted a malformed body", body)
		}
	}
}

func TestCodecRoundTrip(t *testing.T) {
	in := OfferPayload{OfferID: "of-9", ImageURL: "http://img/9.png", Outcome: OutcomeAccepted}
	out, ok := DecodeOfferBody(EncodeOfferBody(in))
	if !ok || out != in {
		t.Fatalf("round trip changed payload: %+v vs %+v", out, in)
	}
}
