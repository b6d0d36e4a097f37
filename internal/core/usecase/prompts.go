package usecase

import (
	"fmt"

	"github.com/kirillkom/legal-doc-assistant/internal/core/domain"
)

const summarizeFilePrompt = `कृपया अपलोड किए गए दस्तावेज़ का सावधानीपूर्वक विश्लेषण करें।
फिर, एक **सरल हिंदी** में लिखा हुआ, सुसंगत पैराग्राफ तैयार करें जो पूरी सामग्री को स्पष्ट और संक्षिप्त रूप से सारांशित करता हो।
दस्तावेज़ के मुख्य विचारों, प्रमुख अंतर्दृष्टियों और समग्र उद्देश्य पर ध्यान केंद्रित करें।
शीर्षक (Headings), बुलेट पॉइंट्स या सूचियों से बचें - इसे केवल एक पैराग्राफ के रूप में लिखें।
सुनिश्चित करें कि प्रतिक्रिया **केवल और केवल सरल हिंदी** में हो। अंग्रेजी शब्दों का प्रयोग न करें जब तक कि कोई उचित हिंदी विकल्प न हो (जैसे किसी नाम या विशिष्ट शब्द)।

---
Analyze the uploaded document carefully. Then, produce a single, well-written paragraph **in simple Hindi** that clearly and concisely summarizes the entire content. Focus on the main ideas, key insights, and overall purpose. Avoid headings, bullet points, or lists. Write it as one cohesive paragraph. Ensure the response is **only and exclusively in simple Hindi**. Do not use English words unless there is no reasonable Hindi alternative (like a name or specific term).`

// QAFallbackAnswer is returned when the QA endpoint replies without an answer.
const QAFallbackAnswer = "मैं आपके प्रश्न को समझने की कोशिश कर रहा हूँ। कृपया अधिक विशिष्ट जानकारी दें या अपने दस्तावेज़ के बारे में पूछें।"

func summarizeByNamePrompt(docName string) string {
	return fmt.Sprintf(
		`कृपया "%s" नामक दस्तावेज़ को सरल हिंदी में एक स्पष्ट पैराग्राफ में सारांशित करें, जिसमें इसके मुख्य विचारों और उद्देश्य को शामिल किया गया हो। केवल सरल हिंदी में उत्तर दें।`,
		docName,
	)
}

func draftClausePrompt(req domain.ClauseRequest) string {
	if req.TargetLanguage == domain.LanguageHindi {
		return fmt.Sprintf(`आप एक कानूनी सहायक हैं। कृपया "%[1]s" के संदर्भ में निम्नलिखित आवश्यकता के लिए एक संक्षिप्त, स्पष्ट और कानूनी रूप से उपयुक्त क्लॉज (clause) सरल हिंदी में तैयार करें:

आवश्यकता: "%[2]s"

केवल क्लॉज का टेक्स्ट प्रदान करें, बिना किसी अतिरिक्त अभिवादन, स्पष्टीकरण या प्रारूपण के। सुनिश्चित करें कि यह क्लॉज "%[1]s" प्रकार के दस्तावेज़ के लिए प्रासंगिक हो।`,
			req.TemplateContext, req.UserInput)
	}
	return fmt.Sprintf(`You are a legal assistant. Please draft a concise, clear, and legally appropriate clause in simple English for the following requirement, within the context of a "%[1]s":

Requirement: "%[2]s"

Provide only the text of the clause, without any extra greetings, explanations, or formatting. Ensure the clause is relevant for a "%[1]s" type of document.`,
		req.TemplateContext, req.UserInput)
}
