package vision

import (
	"fmt"
	"strconv"
)

// Example is one few-shot hint: a base64 PNG of a known-hard player name and
// the ground truth the model should learn from it.
type Example struct {
	ImageB64    string
	Name        string
	Description string
}

// FewShot is the ordered hint set sent ahead of the real crops.
type FewShot []Example

// messages renders the hints as alternating user/assistant turns so the
// model commits to each lesson before seeing the real crops.
func (f FewShot) messages() []message {
	msgs := make([]message, 0, 2*len(f))
	for _, example := range f {
		msgs = append(msgs,
			message{Role: "user", Content: []contentBlock{
				{Type: "image", Source: &imageSource{Type: "base64", MediaType: "image/png", Data: example.ImageB64}},
				{Type: "text", Text: fmt.Sprintf("EXAMPLE: This player name is %q - %s", example.Name, example.Description)},
			}},
			message{Role: "assistant", Content: []contentBlock{
				{Type: "text", Text: fmt.Sprintf("Understood. %q - %s", example.Name, example.Description)},
			}},
		)
	}
	return msgs
}

// DefaultFewShot returns the built-in hints covering the two confusions the
// table font produces most: digit zero vs letter O, and lowercase i vs l.
func DefaultFewShot() FewShot {
	return FewShot{
		{
			ImageB64:    fewshotZeroB64,
			Name:        fewshotZeroName,
			Description: "it contains digit ZEROS (0), not letter O. Zeros are NARROWER than letter O. Do NOT autocorrect to English words.",
		},
		{
			ImageB64:    fewshotIvsLB64,
			Name:        fewshotIvsLName,
			Description: "it contains lowercase 'i' (with dot above), not 'l'. Look for the dot to distinguish.",
		},
	}
}

func recognitionPrompt(numCrops int) string {
	n := strconv.Itoa(numCrops)
	return `The crops above are ` + n + ` player name boxes, each preceded by its index label [0] through [` + strconv.Itoa(numCrops-1) + `].

Read each crop and output one line per crop.

IMPORTANT:
- Some crops are EMPTY (dark/blank) - you MUST still output a line for them as "EMPTY"
- Some names REPEAT multiple times - output each occurrence separately at its index
- Never skip indices - output exactly ` + n + ` lines
- The font is Roboto - uppercase I is slightly shorter than lowercase l, compare heights to distinguish
- 0 vs O: Compare WIDTHS - digit zero is noticeably NARROWER than letter O
- Dimmed/grayed text = "sitting out" players

Output format:
[0] PlayerName
[1] EMPTY
[2] PlayerName

Rules:
- DO NOT autocorrect to English words - output exactly what you see
- Preserve exact spelling, capitalization, spacing
- Include special characters (hyphens, underscores, dots)
- Names ending with ".." are truncated - keep the ".."

Start now:`
}

const fewshotZeroName = "H0T M0USE!"

const fewshotZeroB64 = "iVBORw0KGgoAAAANSUhEUgAAANIAAAAmCAIAAAA++FIaAAACPElEQVR4nO2c63KEIAyFSafv/8rp" +
	"dHfGUiUQkMuRPd+vjhsxJkeiQSshBFUNESISsHk7LCInzz8KgU/TiThZctr0uJNJsoccZYtcxPzJ" +
	"bLUnoDJ9p9yqA0l7VY2FUqwhutelXlepwu4cFbmjpUc0/2qKPab+F+sn8HvK44Yuhvv4O2lmzUAZ" +
	"gzz57DpVUjuTOc2kSbtWBPyWmR2rLsJavkYMepxk2z2WvsgMO5qbB7J2zwyr9UfsO5o1wqCYD5Hd" +
	"454Gqg6aN57jv5aOAv5QBSc7f2GNf0rWgqLBBG7eGDiRF7X2V8IsoGX3DkQmHHG8TmbHxraAdtFH" +
	"0f82rDtLp8QRnmCwZOeZzJDLx3z/JXWx4YMlu1X4s4Us+gcp73u1A6Sa4qogvvJAZzuEwN2Z2Kb5" +
	"r/Cz7xrZre3A9QXTbTXanBn74pYdiixmtjzArlzJpc5WrfAmlccGCinjWU/76Hu7hz7k46dTjJZk" +
	"0dXrXpOTMrzIWr1cwCw6Sb4TheaP2kVzUBN7hyfZtVy7uzgi8898yD5TduXJoO/rIUN5yg0MqOyQ" +
	"r1SQjomODJG1ztsLrlI05mN7ZOSZYs12ntI2LfENB7rjvz6nlO8mO/D4NiveKUE1OsB+sXoC5Qzm" +
	"0DoOXWSLn1OA0+C/OjJ9aj81lIXiLvFL7SNiDjfbQQnrZp3tZS/13V2oMF5Z9uVY0abtfxU0f++U" +
	"WdO0xuzrv/o+NmveyzmPnuzB5UsIIYQQQgghhBBCCCGEEEJIQOcH6Bd6X4KAVyYAAAAASUVORK5C" +
	"YII="

const fewshotIvsLName = "jivr31"

const fewshotIvsLB64 = "iVBORw0KGgoAAAANSUhEUgAAANIAAAAmCAIAAAA++FIaAAABaUlEQVR4nO2a0a6DIBAFoen//zI3" +
	"rWljERdsBbl7Zt4kLWicHFghBAAAAADwQgyuSSk9HjLGxvZzx81oGS69/tjv3mbgFgTIJHhfFuU4" +
	"fbhq+0J6EjS4X30D3qi6FT9jTEc1ubTbY8BEFp+sW5KkZ1raLa88e/HFxn6jG2MlVQWda3chLVrH" +
	"mpdecf60xcJw22jUj3s/Xi6N/o25NTaEn28RSbvWWW9bDq9bMmN8S/M70tpVl1ZnxY/sGk5Ru700" +
	"2lKcgg9hzJtZh5Eg1Plu1+llG92ScKJp9yM6C/zxoN0x2jMMUw3QrqMlS0nLLsUWtBthJMknWlIc" +
	"gmqgN6TdyZkkdX7pa9Cui4uYZ6Oi3XgPMM9ARbtL6H2M+f+Cdn1LTjbHiqDdMQvXLUVH+VbSgrR2" +
	"nbzZ64EDUW88bzVy9GNaPKdddUKEq/CsHfXjtPjcHEO4yfGcdjAtEtqxsINBsCUPAAAAABAG8AcY" +
	"UatG7SL5fwAAAABJRU5ErkJggg=="
