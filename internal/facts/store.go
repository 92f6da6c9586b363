package facts

import (
	"fmt"
	"strings"

	"storyweaver/internal/model"
)

// Category 知识库类别。类别、主题和关键词都是有序切片：
// 匹配时按声明顺序取第一个命中，保证检测结果可复现。
type Category struct {
	Name     string
	Keywords []string
	Facts    []model.Fact
}

func fact(category, topic, text string) model.Fact {
	return model.Fact{Category: category, Topic: topic, Text: text}
}

// Catalog 内置的教育知识库
var Catalog = []Category{
	{
		Name:     "space",
		Keywords: []string{"space", "planet", "mars", "moon", "sun", "star", "solar", "galaxy", "astronaut", "rocket", "orbit"},
		Facts: []model.Fact{
			fact("space", "mars", "Mars is the fourth planet from the Sun and is known as the Red Planet due to iron oxide on its surface. A day on Mars is about 24.6 hours, similar to Earth. Mars has two small moons: Phobos and Deimos."),
			fact("space", "moon", "The Moon is Earth's only natural satellite. It takes about 27.3 days to orbit Earth. The Moon's gravity causes ocean tides on Earth. Humans first landed on the Moon in 1969."),
			fact("space", "sun", "The Sun is a star at the center of our solar system. It's about 4.6 billion years old and provides light and heat to all planets. The Sun is so large that about 1.3 million Earths could fit inside it."),
			fact("space", "stars", "Stars are giant balls of hot gas that produce light and heat through nuclear fusion. The closest star to Earth is the Sun. Stars come in different colors: blue (hottest), white, yellow, orange, and red (coolest)."),
			fact("space", "planets", "There are 8 planets in our solar system: Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, and Neptune. The first four are rocky planets, and the last four are gas giants."),
		},
	},
	{
		Name:     "dinosaurs",
		Keywords: []string{"dinosaur", "dino", "jurassic", "fossil", "prehistoric", "extinct", "t-rex", "triceratops"},
		Facts: []model.Fact{
			fact("dinosaurs", "t-rex", "Tyrannosaurus Rex, or T-Rex, lived about 68-66 million years ago. It was one of the largest meat-eating dinosaurs, about 40 feet long and 12 feet tall. T-Rex had powerful jaws with teeth up to 8 inches long."),
			fact("dinosaurs", "triceratops", "Triceratops was a plant-eating dinosaur with three horns on its head. It lived about 68-66 million years ago and was about 30 feet long. The name Triceratops means 'three-horned face'."),
			fact("dinosaurs", "brachiosaurus", "Brachiosaurus was one of the tallest dinosaurs, with a very long neck. It was a plant-eater that lived about 154-153 million years ago. It could reach heights of up to 50 feet tall."),
			fact("dinosaurs", "stegosaurus", "Stegosaurus was a plant-eating dinosaur with distinctive plates along its back and spikes on its tail. It lived about 155-150 million years ago and was about 30 feet long."),
		},
	},
	{
		Name:     "animals",
		Keywords: []string{"animal", "wildlife", "creature", "mammal", "elephant", "whale", "penguin", "lion", "dolphin"},
		Facts: []model.Fact{
			fact("animals", "elephants", "Elephants are the largest land animals on Earth. They have excellent memories and can live up to 70 years. African elephants have larger ears than Asian elephants. Elephants use their trunks to breathe, smell, touch, and grab things."),
			fact("animals", "whales", "Whales are the largest animals in the ocean. Blue whales are the biggest animals that have ever lived on Earth, even bigger than dinosaurs. Whales are mammals, which means they breathe air and feed milk to their babies."),
			fact("animals", "penguins", "Penguins are birds that cannot fly but are excellent swimmers. They live in cold places like Antarctica. Penguins have waterproof feathers and can dive deep into the ocean to catch fish. They walk upright and often slide on their bellies."),
			fact("animals", "lions", "Lions are known as the 'king of the jungle' and live in groups called prides. Male lions have manes around their heads. Lions are carnivores and hunt in groups. They can sleep up to 20 hours a day."),
			fact("animals", "dolphins", "Dolphins are highly intelligent marine mammals. They communicate using clicks and whistles. Dolphins are known for their playful behavior and can jump high out of the water. They live in groups called pods."),
		},
	},
	{
		Name:     "ocean",
		Keywords: []string{"ocean", "sea", "marine", "underwater", "coral", "shark", "octopus", "fish", "whale"},
		Facts: []model.Fact{
			fact("ocean", "coral", "Coral reefs are underwater structures made by tiny animals called coral polyps. They are home to many colorful fish and sea creatures. Coral reefs are often called the 'rainforests of the sea' because of their biodiversity."),
			fact("ocean", "sharks", "Sharks have been around for over 400 million years. They have special sensors that can detect electrical fields from other animals. Most sharks are not dangerous to humans. Sharks have no bones - their skeletons are made of cartilage."),
			fact("ocean", "octopus", "Octopuses are very intelligent sea creatures with 8 arms. They can change color and texture to blend in with their surroundings. Octopuses have three hearts and blue blood. They can squeeze through very small spaces."),
		},
	},
}

// Lookup 按主题名精确查找（大小写不敏感）。模糊匹配是expander的职责。
func Lookup(topic string) (model.Fact, bool) {
	key := strings.ToLower(strings.TrimSpace(topic))
	for _, c := range Catalog {
		for _, f := range c.Facts {
			if f.Topic == key {
				return f, true
			}
		}
	}
	return model.Fact{}, false
}

// CategoryByName 按类别名查找
func CategoryByName(name string) (Category, bool) {
	for _, c := range Catalog {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// AllTopics 返回全部主题，按声明顺序
func AllTopics() []string {
	var topics []string
	for _, c := range Catalog {
		for _, f := range c.Facts {
			topics = append(topics, f.Topic)
		}
	}
	return topics
}

// FactText 取主题对应的事实文本。找不到精确主题时依次尝试
// 类别关键词匹配（返回该类别的第一条事实），最后返回一条
// "没有该主题"的提示消息。这条消息是正常返回值，不是错误。
func FactText(topic string) string {
	key := strings.ToLower(strings.TrimSpace(topic))

	if f, ok := Lookup(key); ok {
		return f.Text
	}

	for _, c := range Catalog {
		if strings.Contains(c.Name, key) || containsAnyWord(key, c.Name) {
			return fmt.Sprintf("Here's a fact about %s: %s", topic, c.Facts[0].Text)
		}
	}

	topics := AllTopics()
	if len(topics) > 10 {
		topics = topics[:10]
	}
	return fmt.Sprintf("I don't have specific facts about '%s' yet. Available topics include: %s. I'll use general knowledge to make the story educational!",
		topic, strings.Join(topics, ", "))
}

func containsAnyWord(s, words string) bool {
	for _, w := range strings.Fields(words) {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
